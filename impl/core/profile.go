package core

import (
	"context"
	"log/slog"

	"evtickets/entity"
	"evtickets/lib/apperr"
	"evtickets/lib/sl"
)

func (c *Core) GetProfile(ctx context.Context, caller *entity.Identity) (*entity.User, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	user, err := c.db.GetUser(ctx, caller.Uid)
	if err != nil {
		return nil, apperr.Internal("get profile", err)
	}
	if user == nil {
		return nil, apperr.NotFound("profile not found")
	}
	return user, nil
}

// SaveProfile creates or updates the caller's profile. Role and creation time
// of an existing profile are kept; email, cpf and phone must not belong to another user.
func (c *Core) SaveProfile(ctx context.Context, caller *entity.Identity, profile *entity.User) (*entity.User, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.BadRequest("profile is required")
	}
	profile.Id = caller.Uid

	existing, err := c.db.GetUser(ctx, caller.Uid)
	if err != nil {
		return nil, apperr.Internal("get profile", err)
	}
	if existing != nil {
		profile.Role = existing.Role.Normalize()
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.Role = entity.RoleAttendee
		profile.CreatedAt = c.now().UTC()
	}

	other, err := c.db.UserConflict(ctx, profile)
	if err != nil {
		return nil, apperr.Internal("check profile conflict", err)
	}
	if other != nil {
		switch {
		case other.Email == profile.Email:
			return nil, apperr.Conflict("email already registered")
		case other.Cpf == profile.Cpf:
			return nil, apperr.Conflict("cpf already registered")
		default:
			return nil, apperr.Conflict("phone already registered")
		}
	}

	if err = c.db.SaveUser(ctx, profile); err != nil {
		c.log.Error("save profile", sl.Err(err))
		return nil, apperr.Internal("save profile", err)
	}
	return profile, nil
}

// SwitchProfile toggles the caller between attendee and organizer.
func (c *Core) SwitchProfile(ctx context.Context, caller *entity.Identity) (*entity.User, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	user, err := c.db.GetUser(ctx, caller.Uid)
	if err != nil {
		return nil, apperr.Internal("get profile", err)
	}
	if user == nil {
		return nil, apperr.NotFound("profile not found")
	}

	current := user.Role.Normalize()
	next, ok := current.Toggle()
	if !ok {
		return nil, apperr.Internal("unknown role", nil)
	}
	switched, err := c.db.SetUserRole(ctx, user.Id, current, next)
	if err != nil {
		return nil, apperr.Internal("switch role", err)
	}
	if !switched {
		return nil, apperr.Conflict("profile changed concurrently, retry")
	}
	c.log.With(
		slog.String("user_id", user.Id),
		slog.String("from", string(current)),
		slog.String("to", string(next)),
	).Info("profile switched")

	user.Role = next
	return user, nil
}
