package app

import (
	"context"
	"errors"
	"fmt"

	"epaperadmin/internal/util"
	"epaperadmin/pkg/domain"
)

// Execute decodes the submitted form fields for a page and runs the
// resulting command. Every outcome becomes a Result; callers re-query
// entity lists afterwards rather than trusting any in-flight state.
func (a *App) Execute(ctx context.Context, principal domain.Principal, page Page, fields map[string]string) domain.Result {
	cmd, err := DecodeCommand(page, fields)
	if err != nil {
		return resultFromError(ctx, err)
	}
	res, err := a.apply(ctx, principal, cmd)
	if err != nil {
		return resultFromError(ctx, err)
	}
	return res
}

func (a *App) apply(ctx context.Context, principal domain.Principal, cmd Command) (domain.Result, error) {
	switch c := cmd.(type) {
	case CreateCategory:
		cat, err := a.CreateCategory(c)
		if err != nil {
			return domain.Result{}, err
		}
		return ok("Category %q created", cat.Name), nil
	case UpdateCategory:
		cat, err := a.UpdateCategory(c)
		if err != nil {
			return domain.Result{}, err
		}
		return ok("Category %q updated", cat.Name), nil
	case DeleteCategory:
		if err := a.DeleteCategory(c.ID); err != nil {
			return domain.Result{}, err
		}
		return ok("Category deleted"), nil

	case CreateEdition:
		ed, err := a.CreateEdition(c)
		if err != nil {
			return domain.Result{}, err
		}
		return ok("Edition %q created", ed.Title), nil
	case UpdateEdition:
		ed, err := a.UpdateEdition(c)
		if err != nil {
			return domain.Result{}, err
		}
		return ok("Edition %q updated", ed.Title), nil
	case DeleteEdition:
		if err := a.DeleteEdition(ctx, c.ID); err != nil {
			return domain.Result{}, err
		}
		return ok("Edition deleted"), nil
	case SetEditionStatus:
		if err := a.SetEditionStatus(c.ID, c.Status); err != nil {
			return domain.Result{}, err
		}
		return ok("Edition %s", c.Status), nil

	case CreateClip:
		clip, err := a.CreateClip(c)
		if err != nil {
			return domain.Result{}, err
		}
		return ok("Clip %q created", clip.Title), nil
	case DeleteClip:
		if err := a.DeleteClip(c.ID); err != nil {
			return domain.Result{}, err
		}
		return ok("Clip deleted"), nil
	case BulkDeleteClips:
		return a.BulkDeleteClips(ctx, c.IDs)

	case SaveSettings:
		if err := a.SaveSettings(c.Values); err != nil {
			return domain.Result{}, err
		}
		return ok("Settings saved"), nil
	case ResetSettings:
		if err := a.ResetSettings(); err != nil {
			return domain.Result{}, err
		}
		return ok("Settings reset to defaults"), nil
	case RemoveWatermark:
		if err := a.RemoveWatermark(); err != nil {
			return domain.Result{}, err
		}
		return ok("Watermark removed"), nil

	case CreateUser:
		user, err := a.CreateUser(principal, c)
		if err != nil {
			return domain.Result{}, err
		}
		return ok("User %q created", user.Username), nil
	case UpdateUser:
		user, err := a.UpdateUser(c)
		if err != nil {
			return domain.Result{}, err
		}
		return ok("User %q updated", user.Username), nil
	case DeleteUser:
		if err := a.DeleteUser(principal, c.ID); err != nil {
			return domain.Result{}, err
		}
		return ok("User deleted"), nil
	case ToggleUserActive:
		active, err := a.ToggleUserActive(principal, c.ID)
		if err != nil {
			return domain.Result{}, err
		}
		if active {
			return ok("User activated"), nil
		}
		return ok("User deactivated"), nil
	case UnlockUser:
		if err := a.UnlockUser(c.ID); err != nil {
			return domain.Result{}, err
		}
		return ok("User unlocked"), nil
	}
	return domain.Result{}, domain.Validationf("Invalid action")
}

func ok(format string, args ...any) domain.Result {
	return domain.Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

// resultFromError maps the error taxonomy onto user-facing messages.
// Validation and not-found messages pass through verbatim; storage and
// filesystem details are logged but never shown.
func resultFromError(ctx context.Context, err error) domain.Result {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return domain.Result{Success: false, Message: verr.Msg}
	}
	var nferr *domain.NotFoundError
	if errors.As(err, &nferr) {
		return domain.Result{Success: false, Message: nferr.Error()}
	}
	logger := util.LoggerFromContext(ctx)
	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		logger.Error("persistence failure", "op", perr.Op, "err", perr.Err)
		return domain.Result{Success: false, Message: "A database error occurred. Please try again."}
	}
	var fserr *domain.FileSystemError
	if errors.As(err, &fserr) {
		logger.Error("filesystem failure", "path", fserr.Path, "err", fserr.Err)
		return domain.Result{Success: false, Message: "A file storage error occurred. Please try again."}
	}
	logger.Error("unexpected failure", "err", err)
	return domain.Result{Success: false, Message: "An unexpected error occurred. Please try again."}
}
