package response

type Error struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
