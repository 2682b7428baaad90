package model

// RosterEntry はCanvasから取得した受講者1名分の登録情報を表す。
// 表示に使わないフィールドもそのまま保持する。
type RosterEntry struct {
	ID           int64  `json:"id"`            // Canvas内部のユーザーID
	Name         string `json:"name"`          // 表示名
	SortableName string `json:"sortable_name"` // "Last, First" 形式
	ShortName    string `json:"short_name"`    // 短縮名
	SISUserID    string `json:"sis_user_id"`   // 学籍システムID（写真ディレクトリと共通）
	LoginID      string `json:"login_id"`      // ログインID
	Email        string `json:"email,omitempty"`
}
