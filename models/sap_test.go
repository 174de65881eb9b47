package models_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smtworks/qcreport_backend/models"
)

func TestMockSAPClientLookup(t *testing.T) {
	client := &models.MockSAPClient{Materials: map[string]string{"100-4001": "PCB ASSY, CONTROLLER REV A"}}

	material, err := client.GetMaterialData(context.Background(), "100-4001")
	if err != nil {
		t.Fatalf("GetMaterialData: %v", err)
	}
	if material.Id != "100-4001" || material.Description != "PCB ASSY, CONTROLLER REV A" {
		t.Errorf("unexpected material: %+v", material)
	}

	if _, err := client.GetMaterialData(context.Background(), "999-0000"); !errors.Is(err, models.ErrMaterialNotFound) {
		t.Fatalf("expected ErrMaterialNotFound, got %v", err)
	}
}

func TestMockSAPClientTimeout(t *testing.T) {
	client := &models.MockSAPClient{ShouldTimeout: true}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.GetMaterialData(ctx, "100-4001")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}
