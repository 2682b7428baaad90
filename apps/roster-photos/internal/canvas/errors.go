package canvas

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse はCanvasからのレスポンスが不正な場合のエラー
var ErrInvalidResponse = errors.New("invalid response from canvas")

// RosterFetchError はCanvas APIが非2xxを返した場合のエラー
type RosterFetchError struct {
	StatusCode int
	Message    string
}

func (e *RosterFetchError) Error() string {
	return fmt.Sprintf("canvas api error: %d %s", e.StatusCode, e.Message)
}

// IsUnauthorized はAPIトークンが拒否されたかどうかを判定する
func (e *RosterFetchError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsNotFound はコースが存在しないかどうかを判定する
func (e *RosterFetchError) IsNotFound() bool {
	return e.StatusCode == 404
}

// eventID はログ出力用のイベントIDを返す
func (e *RosterFetchError) eventID() string {
	switch {
	case e.IsUnauthorized():
		return "CANVAS_AUTH_ERR"
	case e.IsNotFound():
		return "CANVAS_COURSE_NOT_FOUND"
	default:
		return "CANVAS_API_ERR"
	}
}
