package handlers

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/yungbote/cardmarket-backend/internal/pkg/errors"
)

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a uuid", pkgerrors.ErrInvalidArgument, field)
	}
	return id, nil
}

func invalidRequest(err error) error {
	return fmt.Errorf("%w: %v", pkgerrors.ErrInvalidArgument, err)
}
