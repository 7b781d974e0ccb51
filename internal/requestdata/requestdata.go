package requestdata

import (
	"context"

	"github.com/google/uuid"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

type requestDataKeyType struct{}

var requestDataKey = requestDataKeyType{}

// RequestData is the already-resolved caller identity every service sees.
type RequestData struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	EmployeeID     uuid.UUID
	Role           types.Role
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}
