package spec

import "github.com/tansive/spore/internal/common/apperrors"

// Spec errors are fatal to client construction and are never retried.
var (
	ErrSpec         apperrors.Error = apperrors.New("spec error")
	ErrSpecFormat   apperrors.Error = ErrSpec.New("unsupported spec format")
	ErrSpecNotFound apperrors.Error = ErrSpec.New("spec not found")
	ErrSpecShape    apperrors.Error = ErrSpec.New("invalid spec")
	ErrSpecVersion  apperrors.Error = ErrSpecShape.New("unsupported spec version")
)
