// Package roster は名簿と写真の突き合わせを行う。
package roster

//go:generate mockgen -source=interfaces.go -destination=mock_interfaces.go -package=roster

import (
	"context"

	"github.com/sfu/roster-photos-lti/pkg/model"
)

// RosterFetcher はCanvas名簿取得のインターフェース。
type RosterFetcher interface {
	FetchRoster(ctx context.Context, launch model.LaunchPayload) ([]model.RosterEntry, error)
}

// PhotoFetcher は写真取得のインターフェース。
// 戻り値はidsと同じ長さで、写真がない位置はnil。
type PhotoFetcher interface {
	GetPhotos(ctx context.Context, ids []string) ([]*model.PhotoRecord, error)
}
