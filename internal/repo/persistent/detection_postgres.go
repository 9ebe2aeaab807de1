package persistent

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"visionapi/internal/entity"
	"visionapi/pkg/postgres"
)

const (
	// Tables
	labelsTable   = "detection_labels"
	personsTable  = "person_detections"
	facesTable    = "face_detections"
	emotionsTable = "face_emotions"

	// Shared columns
	imageIDColumn    = "image_id"
	confidenceColumn = "confidence"
	bboxLeftColumn   = "bbox_left"
	bboxTopColumn    = "bbox_top"
	bboxWidthColumn  = "bbox_width"
	bboxHeightColumn = "bbox_height"

	// detection_labels
	labelNameColumn = "label_name"

	// face_detections
	ageLowColumn            = "age_low"
	ageHighColumn           = "age_high"
	genderColumn            = "gender"
	genderConfidenceColumn  = "gender_confidence"
	primaryEmotionColumn    = "primary_emotion"
	emotionConfidenceColumn = "emotion_confidence"

	// face_emotions
	faceDetectionIDColumn = "face_detection_id"
	emotionTypeColumn     = "emotion_type"
)

type DetectionRepo struct {
	*postgres.Postgres
}

func NewDetectionRepo(pg *postgres.Postgres) *DetectionRepo {
	return &DetectionRepo{pg}
}

func (r *DetectionRepo) SaveLabels(ctx context.Context, imageID uuid.UUID, labels []entity.Label) error {
	if len(labels) == 0 {
		return nil
	}

	builder := r.Builder.
		Insert(labelsTable).
		Columns(imageIDColumn, labelNameColumn, confidenceColumn)

	for _, label := range labels {
		builder = builder.Values(imageID, label.Name, label.Confidence)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("DetectionRepo - SaveLabels - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("DetectionRepo - SaveLabels - executor.Exec: %w", err)
	}

	return nil
}

func (r *DetectionRepo) SavePersons(ctx context.Context, imageID uuid.UUID, persons []entity.PersonDetection) error {
	if len(persons) == 0 {
		return nil
	}

	builder := r.Builder.
		Insert(personsTable).
		Columns(imageIDColumn, confidenceColumn, bboxLeftColumn, bboxTopColumn, bboxWidthColumn, bboxHeightColumn)

	for _, person := range persons {
		builder = builder.Values(
			imageID,
			person.Confidence,
			person.Box.Left,
			person.Box.Top,
			person.Box.Width,
			person.Box.Height,
		)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("DetectionRepo - SavePersons - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("DetectionRepo - SavePersons - executor.Exec: %w", err)
	}

	return nil
}

// SaveFaces inserts one face row at a time because the emotion child
// rows need the generated face id.
func (r *DetectionRepo) SaveFaces(ctx context.Context, imageID uuid.UUID, faces []entity.FaceDetection) error {
	executor := r.GetExecutor(ctx)

	for _, face := range faces {
		var ageLow, ageHigh *int
		if face.AgeRange != nil {
			ageLow, ageHigh = &face.AgeRange.Low, &face.AgeRange.High
		}

		var gender *string
		var genderConfidence *float64
		if face.Gender != nil {
			gender, genderConfidence = &face.Gender.Value, &face.Gender.Confidence
		}

		var primaryEmotion *string
		var emotionConfidence *float64
		if face.PrimaryEmotion != nil {
			primaryEmotion, emotionConfidence = &face.PrimaryEmotion.Type, &face.PrimaryEmotion.Confidence
		}

		sql, args, err := r.Builder.
			Insert(facesTable).
			Columns(
				imageIDColumn,
				confidenceColumn,
				bboxLeftColumn,
				bboxTopColumn,
				bboxWidthColumn,
				bboxHeightColumn,
				ageLowColumn,
				ageHighColumn,
				genderColumn,
				genderConfidenceColumn,
				primaryEmotionColumn,
				emotionConfidenceColumn,
			).
			Values(
				imageID,
				face.Confidence,
				face.Box.Left,
				face.Box.Top,
				face.Box.Width,
				face.Box.Height,
				ageLow,
				ageHigh,
				gender,
				genderConfidence,
				primaryEmotion,
				emotionConfidence,
			).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("DetectionRepo - SaveFaces - r.Builder.ToSql: %w", err)
		}

		var faceID int64
		err = executor.QueryRow(ctx, sql, args...).Scan(&faceID)
		if err != nil {
			return fmt.Errorf("DetectionRepo - SaveFaces - executor.QueryRow: %w", err)
		}

		if len(face.Emotions) == 0 {
			continue
		}

		emotionBuilder := r.Builder.
			Insert(emotionsTable).
			Columns(faceDetectionIDColumn, emotionTypeColumn, confidenceColumn)

		for _, emotion := range face.Emotions {
			emotionBuilder = emotionBuilder.Values(faceID, emotion.Type, emotion.Confidence)
		}

		sql, args, err = emotionBuilder.ToSql()
		if err != nil {
			return fmt.Errorf("DetectionRepo - SaveFaces - emotionBuilder.ToSql: %w", err)
		}

		_, err = executor.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("DetectionRepo - SaveFaces - executor.Exec: %w", err)
		}
	}

	return nil
}

func (r *DetectionRepo) LabelsByImage(ctx context.Context, imageID uuid.UUID) ([]entity.Label, error) {
	sql, args, err := r.Builder.
		Select(labelNameColumn, confidenceColumn).
		From(labelsTable).
		Where(squirrel.Eq{imageIDColumn: imageID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("DetectionRepo - LabelsByImage - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("DetectionRepo - LabelsByImage - executor.Query: %w", err)
	}
	defer rows.Close()

	var labels []entity.Label
	for rows.Next() {
		var label entity.Label
		if err := rows.Scan(&label.Name, &label.Confidence); err != nil {
			return nil, fmt.Errorf("DetectionRepo - LabelsByImage - rows.Scan: %w", err)
		}
		labels = append(labels, label)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("DetectionRepo - LabelsByImage - rows.Err: %w", err)
	}

	return labels, nil
}

func (r *DetectionRepo) PersonsByImage(ctx context.Context, imageID uuid.UUID) ([]entity.PersonDetection, error) {
	sql, args, err := r.Builder.
		Select(confidenceColumn, bboxLeftColumn, bboxTopColumn, bboxWidthColumn, bboxHeightColumn).
		From(personsTable).
		Where(squirrel.Eq{imageIDColumn: imageID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("DetectionRepo - PersonsByImage - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("DetectionRepo - PersonsByImage - executor.Query: %w", err)
	}
	defer rows.Close()

	var persons []entity.PersonDetection
	for rows.Next() {
		var person entity.PersonDetection
		err := rows.Scan(
			&person.Confidence,
			&person.Box.Left,
			&person.Box.Top,
			&person.Box.Width,
			&person.Box.Height,
		)
		if err != nil {
			return nil, fmt.Errorf("DetectionRepo - PersonsByImage - rows.Scan: %w", err)
		}
		persons = append(persons, person)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("DetectionRepo - PersonsByImage - rows.Err: %w", err)
	}

	return persons, nil
}

// FacesByImage returns every face with its full emotion list attached.
func (r *DetectionRepo) FacesByImage(ctx context.Context, imageID uuid.UUID) ([]entity.FaceDetection, error) {
	sql, args, err := r.Builder.
		Select(
			"id",
			confidenceColumn,
			bboxLeftColumn,
			bboxTopColumn,
			bboxWidthColumn,
			bboxHeightColumn,
			ageLowColumn,
			ageHighColumn,
			genderColumn,
			genderConfidenceColumn,
			primaryEmotionColumn,
			emotionConfidenceColumn,
		).
		From(facesTable).
		Where(squirrel.Eq{imageIDColumn: imageID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("DetectionRepo - FacesByImage - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("DetectionRepo - FacesByImage - executor.Query: %w", err)
	}

	type faceRow struct {
		id   int64
		face entity.FaceDetection
	}

	var faceRows []faceRow
	for rows.Next() {
		var (
			fr                faceRow
			ageLow, ageHigh   *int
			gender            *string
			genderConfidence  *float64
			primaryEmotion    *string
			emotionConfidence *float64
		)

		err := rows.Scan(
			&fr.id,
			&fr.face.Confidence,
			&fr.face.Box.Left,
			&fr.face.Box.Top,
			&fr.face.Box.Width,
			&fr.face.Box.Height,
			&ageLow,
			&ageHigh,
			&gender,
			&genderConfidence,
			&primaryEmotion,
			&emotionConfidence,
		)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("DetectionRepo - FacesByImage - rows.Scan: %w", err)
		}

		if ageLow != nil && ageHigh != nil {
			fr.face.AgeRange = &entity.AgeRange{Low: *ageLow, High: *ageHigh}
		}
		if gender != nil {
			g := entity.Gender{Value: *gender}
			if genderConfidence != nil {
				g.Confidence = *genderConfidence
			}
			fr.face.Gender = &g
		}
		if primaryEmotion != nil {
			e := entity.Emotion{Type: *primaryEmotion}
			if emotionConfidence != nil {
				e.Confidence = *emotionConfidence
			}
			fr.face.PrimaryEmotion = &e
		}

		faceRows = append(faceRows, fr)
	}

	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("DetectionRepo - FacesByImage - rows.Err: %w", err)
	}
	rows.Close()

	faces := make([]entity.FaceDetection, 0, len(faceRows))
	for _, fr := range faceRows {
		emotions, err := r.emotionsByFace(ctx, fr.id)
		if err != nil {
			return nil, err
		}
		fr.face.Emotions = emotions
		faces = append(faces, fr.face)
	}

	return faces, nil
}

func (r *DetectionRepo) emotionsByFace(ctx context.Context, faceID int64) ([]entity.Emotion, error) {
	sql, args, err := r.Builder.
		Select(emotionTypeColumn, confidenceColumn).
		From(emotionsTable).
		Where(squirrel.Eq{faceDetectionIDColumn: faceID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("DetectionRepo - emotionsByFace - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("DetectionRepo - emotionsByFace - executor.Query: %w", err)
	}
	defer rows.Close()

	var emotions []entity.Emotion
	for rows.Next() {
		var emotion entity.Emotion
		if err := rows.Scan(&emotion.Type, &emotion.Confidence); err != nil {
			return nil, fmt.Errorf("DetectionRepo - emotionsByFace - rows.Scan: %w", err)
		}
		emotions = append(emotions, emotion)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("DetectionRepo - emotionsByFace - rows.Err: %w", err)
	}

	return emotions, nil
}
