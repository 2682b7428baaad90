package photo

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse は写真ディレクトリからのレスポンスが不正な場合のエラー
var ErrInvalidResponse = errors.New("invalid response from photo directory")

// PhotoFetchError は写真ディレクトリが非2xxを返した場合のエラー
type PhotoFetchError struct {
	StatusCode int
	Message    string
}

func (e *PhotoFetchError) Error() string {
	return fmt.Sprintf("photo directory error: %d %s", e.StatusCode, e.Message)
}
