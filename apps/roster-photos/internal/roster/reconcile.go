package roster

import (
	"errors"
	"strconv"
	"strings"

	"github.com/sfu/roster-photos-lti/pkg/model"
)

// ErrLengthMismatch は名簿と写真の件数が一致しない場合のエラー
var ErrLengthMismatch = errors.New("roster and photo results differ in length")

// nameSeparator はCanvasのsortable_nameにおける姓と名の区切り
const nameSeparator = ", "

// Reconcile は名簿と写真取得結果を位置で突き合わせ、表示用レコードを返す。
// photos[i]はroster[i]に対応し、nilは写真なしを表す。
// 写真がない学生はsortable_nameから姓名を組み立て、placeholderを画像に使う。
func Reconcile(courseID, base string, roster []model.RosterEntry, photos []*model.PhotoRecord, placeholder string) ([]model.PresentationRecord, error) {
	if len(photos) != len(roster) {
		return nil, ErrLengthMismatch
	}

	out := make([]model.PresentationRecord, len(roster))
	for i, entry := range roster {
		var rec model.PresentationRecord
		if p := photos[i]; p != nil {
			rec = model.PresentationRecord{
				LastName:              p.LastName,
				FirstName:             p.FirstName,
				SfuID:                 p.SfuID,
				PictureIdentification: p.PictureIdentification,
				Extra:                 p.Extra,
			}
		} else {
			last, first, ok := SplitSortableName(entry.SortableName)
			rec = model.PresentationRecord{
				LastName:              last,
				FirstName:             first,
				SfuID:                 entry.SISUserID,
				PictureIdentification: placeholder,
				Placeholder:           true,
				NeedsReview:           !ok,
			}
		}
		rec.CanvasProfileURL = ProfileURL(base, courseID, entry.ID)
		out[i] = rec
	}
	return out, nil
}

// SplitSortableName は "Last, First" を最初の区切りで分割する。
// 区切りがない場合は全体を姓とし、okはfalse。
func SplitSortableName(name string) (last, first string, ok bool) {
	last, first, ok = strings.Cut(name, nameSeparator)
	if !ok {
		return name, "", false
	}
	return last, first, true
}

// ProfileURL はCanvas上の受講者プロフィールURLを返す。
func ProfileURL(base, courseID string, userID int64) string {
	return base + "/courses/" + courseID + "/users/" + strconv.FormatInt(userID, 10)
}
