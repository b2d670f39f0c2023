// internal/orchestrator/scripts.go
package orchestrator

import (
	"context"
	_ "embed"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/browser/jsexec"
)

var (
	//go:embed js_scripts/find_login_fields.js
	findLoginFieldsScript string
	//go:embed js_scripts/find_login_button.js
	findLoginButtonScript string
	//go:embed js_scripts/show_page.js
	showPageScript string
	//go:embed js_scripts/list_links.js
	listLinksScript string
	//go:embed js_scripts/click_first.js
	clickFirstScript string
	//go:embed js_scripts/scroll_top.js
	scrollTopScript string
	//go:embed js_scripts/current_location.js
	currentLocationScript string
)

func evaluate(ctx context.Context, page schemas.Page, script string, res interface{}, args ...interface{}) error {
	expr, err := jsexec.Call(script, args...)
	if err != nil {
		return err
	}
	return page.Evaluate(ctx, expr, res)
}
