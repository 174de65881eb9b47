package models

import (
	"context"
	"errors"

	"github.com/smtworks/qcreport_backend/config"
)

// Material is the subset of SAP material-master data the inspection
// screens look up.
type Material struct {
	Id          string `json:"id"`
	Description string `json:"description"`
}

// ErrMaterialNotFound marks an unknown material id.
var ErrMaterialNotFound = errors.New("material not found")

// SAPClient looks up material-master data in the ERP. The mock
// implementation stands in until the SAP connection is provisioned.
type SAPClient interface {
	GetMaterialData(ctx context.Context, id string) (*Material, error)
}

// NewSAPClient picks the real client when the SAP integration is
// switched on, the canned mock otherwise.
func NewSAPClient() SAPClient {
	if config.UseSAP() {
		return &RealSAPClient{}
	}
	return &MockSAPClient{Materials: mockMaterials}
}

// RealSAPClient will wrap the RFC connection once the SAP side is
// provisioned.
type RealSAPClient struct{}

func (c *RealSAPClient) GetMaterialData(ctx context.Context, id string) (*Material, error) {
	return nil, errors.New("sap connection is not configured")
}

var mockMaterials = map[string]string{
	"100-4001": "PCB ASSY, CONTROLLER REV A",
	"100-4002": "PCB ASSY, POWER SUPPLY REV C",
	"100-4003": "PCB ASSY, SENSOR INTERFACE REV B",
}

// MockSAPClient serves deterministic canned data. ShouldTimeout makes
// it block until context cancellation the way a stalled RFC call
// would, for exercising the handler's timeout path.
type MockSAPClient struct {
	Materials     map[string]string
	ShouldTimeout bool
}

func (c *MockSAPClient) GetMaterialData(ctx context.Context, id string) (*Material, error) {
	if c.ShouldTimeout {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	description, ok := c.Materials[id]
	if !ok {
		return nil, ErrMaterialNotFound
	}
	return &Material{Id: id, Description: description}, nil
}
