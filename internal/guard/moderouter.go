package guard

import (
	"fmt"

	"github.com/Iron-Ham/warden/internal/counter"
	"github.com/Iron-Ham/warden/internal/hook"
	"github.com/Iron-Ham/warden/internal/rules"
)

// RouteTask is the pre-dispatch policy check on a delegated unit of
// work. It denies a model the active mode forbids, with an adaptive
// escape valve: the same (mode, model) combination is only denied a
// bounded number of times before the override lets it through, so a
// genuinely necessary model is never refused forever.
func (e *Env) RouteTask(in hook.Input) Decision {
	log := e.Logger.WithHook("pre-task")

	resolved := e.Bindings.Resolve(in.SessionID)
	if resolved == nil {
		return allow
	}
	mode := resolved.Record.Mode.Current
	if mode == "" {
		return allow
	}

	model := in.ToolInput.Model
	if model == "" {
		// No model requested: the dispatcher's default applies.
		return allow
	}
	if !rules.IsModelForbidden(mode, model) {
		return allow
	}

	denyFile := e.Bindings.DenyCounterFile(in.SessionID)
	key := mode + "-" + model
	count := counter.MapIncrement(denyFile, key)

	if count > e.Thresholds.DenyLimit {
		log.Warn("override: allowing forbidden model after repeated denials",
			"mode", mode, "model", model, "denials", count)
		counter.MapReset(denyFile, key)
		return allow
	}

	reason := fmt.Sprintf(
		"Mode %q forbids model %q. Use %q instead. (Denial %d/%d, override at %d)",
		mode, model, rules.PreferredModel(mode),
		count, e.Thresholds.DenyLimit, e.Thresholds.DenyLimit+1,
	)
	log.Info("denied forbidden model", "mode", mode, "model", model,
		"denials", count, "limit", e.Thresholds.DenyLimit)
	return deny(reason)
}
