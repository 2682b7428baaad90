// Package web は埋め込みテンプレート・静的ファイル・プレースホルダー画像を提供する。
package web

import (
	"embed"
	"encoding/base64"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/sfu/roster-photos-lti/pkg/model"
)

// テンプレート名
const (
	TemplateLaunch = "launch.tmpl"
	TemplateGrid   = "grid.tmpl"
	TemplateEmpty  = "empty.tmpl"
	TemplateError  = "error.tmpl"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

//go:embed assets/placeholder.svg
var placeholderSVG []byte

var placeholderBase64 = base64.StdEncoding.EncodeToString(placeholderSVG)

// Templates は埋め込みテンプレートを解析して返す。
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"photoSrc": PhotoSrc,
	}).ParseFS(templateFS, "templates/*.tmpl")
}

// MustTemplates はTemplatesの結果を返す。解析に失敗した場合はパニックする。
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// Static は /js 配下で配信する静的ファイルを返す。
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static/js")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// PlaceholderBase64 はプレースホルダー画像のbase64文字列を返す。
func PlaceholderBase64() string {
	return placeholderBase64
}

// PhotoSrc は表示用レコードの画像をdata URIにする。
// 写真ディレクトリの画像はJPEG、プレースホルダーはSVG。
func PhotoSrc(rec model.PresentationRecord) template.URL {
	mime := "image/jpeg"
	if rec.Placeholder {
		mime = "image/svg+xml"
	}
	// base64文字列のみを埋め込むためエスケープは不要
	return template.URL("data:" + mime + ";base64," + rec.PictureIdentification) //nolint:gosec
}
