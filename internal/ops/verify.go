package ops

import (
	"database/sql"
	"strings"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/db"
	"github.com/kailabs/kapsel/internal/errors"
)

// VerifyInput contains parameters for the Verify operation.
type VerifyInput struct {
	ID     string // required
	Result string // "verified" or "rejected"
}

// VerifyOutput contains the result of the Verify operation.
type VerifyOutput struct {
	ID                 string                     `json:"id"`
	VerificationStatus capsule.VerificationStatus `json:"verification_status"`
}

// Verify moves a capsule's origin verification status to verified or
// rejected.
func Verify(database *sql.DB, input VerifyInput) (*VerifyOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewValidation("id is required")
	}

	status := capsule.VerificationStatus(strings.TrimSpace(input.Result))
	if status != capsule.VerificationVerified && status != capsule.VerificationRejected {
		return nil, errors.NewValidation("result must be one of: verified, rejected")
	}

	if err := db.SetVerification(database, id, status); err != nil {
		return nil, err
	}

	return &VerifyOutput{ID: id, VerificationStatus: status}, nil
}
