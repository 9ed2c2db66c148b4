package output

import (
	"context"

	"swagflow/internal/domain/entity"
)

// BrowserPort is the driver capability the interaction layer consumes.
// Locate must not block: it reports entity.ErrElementNotFound when nothing
// matches right now. Waiting is the caller's job.
type BrowserPort interface {
	Navigate(ctx context.Context, url string) error
	Locate(ctx context.Context, loc entity.Locator) (entity.ElementHandle, error)
	IsVisible(ctx context.Context, el entity.ElementHandle) (bool, error)
	IsEnabled(ctx context.Context, el entity.ElementHandle) (bool, error)
	Act(ctx context.Context, el entity.ElementHandle, action entity.Action) (string, error)

	CurrentTitle(ctx context.Context) (string, error)
	AlertPresent(ctx context.Context) (bool, error)
	AcceptAlert(ctx context.Context) error

	Screenshot(ctx context.Context) (*entity.Screenshot, error)
	PageHTML(ctx context.Context) (string, error)

	CurrentURL() string
	Close()
}
