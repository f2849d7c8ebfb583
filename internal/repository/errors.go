package repository

import (
	"errors"
	"fmt"

	"github.com/krakosik/pollbot/internal/dto"
	"gorm.io/gorm"
)

func wrapError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", dto.ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
}
