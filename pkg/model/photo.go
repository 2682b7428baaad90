package model

import "encoding/json"

// PhotoRecord は写真ディレクトリサービスの1件分のレコードを表す。
// 写真が登録されていない学生はnilで表す。
type PhotoRecord struct {
	SfuID                 string `json:"SfuId"`
	LastName              string `json:"LastName"`
	FirstName             string `json:"FirstName"`
	PictureIdentification string `json:"PictureIdentification"` // base64エンコード済み画像

	// Extra は上記以外のフィールド。値は受信したまま保持する。
	Extra map[string]json.RawMessage `json:"-"`
}

// photoRecordKeys はPhotoRecordが個別に扱うJSONキー
var photoRecordKeys = []string{"SfuId", "LastName", "FirstName", "PictureIdentification"}

type photoRecordFields PhotoRecord

// UnmarshalJSON は既知フィールドを読み込み、残りをExtraに保持する。
func (p *PhotoRecord) UnmarshalJSON(data []byte) error {
	var fields photoRecordFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range photoRecordKeys {
		delete(all, k)
	}
	fields.Extra = nil
	if len(all) > 0 {
		fields.Extra = all
	}
	*p = PhotoRecord(fields)
	return nil
}

// MarshalJSON はExtraを既知フィールドと同じ階層に展開する。
func (p PhotoRecord) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(photoRecordFields(p), p.Extra)
}

// PresentationRecord は名簿と写真を突き合わせた表示用レコード。
// 名簿1件につき必ず1件生成し、永続化しない。
type PresentationRecord struct {
	LastName              string `json:"LastName"`
	FirstName             string `json:"FirstName"`
	SfuID                 string `json:"SfuId"`
	PictureIdentification string `json:"PictureIdentification"`
	CanvasProfileURL      string `json:"canvasProfileUrl"`
	Placeholder           bool   `json:"placeholder"` // 写真未登録でプレースホルダー画像を使用
	NeedsReview           bool   `json:"needsReview"` // sortable_nameの形式不正（運用確認対象）

	// Extra は写真レコードの追加フィールド。既知フィールドと同名のキーは出力しない。
	Extra map[string]json.RawMessage `json:"-"`
}

type presentationRecordFields PresentationRecord

// MarshalJSON はExtraを既知フィールドと同じ階層に展開する。
func (r PresentationRecord) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(presentationRecordFields(r), r.Extra)
}

// marshalWithExtra はvをJSONオブジェクトにし、extraのうち未使用のキーを追加する。
func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = val
		}
	}
	return json.Marshal(merged)
}
