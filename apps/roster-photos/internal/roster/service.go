package roster

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/canvas"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/photo"
	"github.com/sfu/roster-photos-lti/pkg/apperr"
	"github.com/sfu/roster-photos-lti/pkg/logging"
	"github.com/sfu/roster-photos-lti/pkg/model"
)

// CourseRoster はコースの表示用名簿。
type CourseRoster struct {
	CourseID string
	Title    string
	Entries  []model.PresentationRecord
	Empty    bool
}

// Service は名簿取得・写真取得・突き合わせを順に実行する。
type Service struct {
	roster      RosterFetcher
	photos      PhotoFetcher
	placeholder string
	fields      *logging.CommonFields
}

// NewService は新しいServiceを生成する。
func NewService(roster RosterFetcher, photos PhotoFetcher, placeholder string, fields *logging.CommonFields) *Service {
	if fields == nil {
		fields = logging.NewCommonFields(nil)
	}
	return &Service{
		roster:      roster,
		photos:      photos,
		placeholder: placeholder,
		fields:      fields,
	}
}

// CourseRoster は起動情報のコースについて表示用名簿を生成する。
// 名簿が空の場合は写真ディレクトリを呼ばずにEmptyを返す。
func (s *Service) CourseRoster(ctx context.Context, launch model.LaunchPayload) (*CourseRoster, error) {
	courseID := launch.CourseID()
	base, err := launch.PlatformOrigin()
	if err != nil {
		return nil, apperr.NewValidationError(model.ParamReturnURL, err.Error())
	}

	entries, err := s.roster.FetchRoster(ctx, launch)
	if err != nil {
		return nil, apperr.NewUpstreamError(apperr.SourceRoster, rosterStatus(err), err)
	}

	result := &CourseRoster{CourseID: courseID, Title: launch.ContextTitle()}
	if len(entries) == 0 {
		result.Empty = true
		return result, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.SISUserID
	}
	photos, err := s.photos.GetPhotos(ctx, ids)
	if err != nil {
		return nil, apperr.NewUpstreamError(apperr.SourcePhoto, photoStatus(err), err)
	}

	records, err := Reconcile(courseID, base, entries, photos, s.placeholder)
	if err != nil {
		return nil, err
	}

	traceID := logging.TraceIDFromContext(ctx)
	for _, rec := range records {
		if rec.NeedsReview {
			slog.Warn("sortable name has no separator",
				append(s.fields.RosterLogFields(traceID, "ROSTER_NAME_MALFORMED", courseID, rec.SfuID),
					logging.WithError(apperr.ErrMalformedName))...)
		}
	}

	result.Entries = records
	return result, nil
}

func rosterStatus(err error) int {
	var fetchErr *canvas.RosterFetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	return 0
}

func photoStatus(err error) int {
	var fetchErr *photo.PhotoFetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	return 0
}
