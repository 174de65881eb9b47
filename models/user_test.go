package models_test

import (
	"testing"

	"github.com/smtworks/qcreport_backend/models"
)

func TestHasFeaturePerFlag(t *testing.T) {
	user := models.User{PartMarkings: true, Dashboard: true}

	if !user.HasFeature(models.FeaturePartMarkings) {
		t.Error("part_markings flag should grant the feature")
	}
	if !user.HasFeature(models.FeatureDashboard) {
		t.Error("dashboard flag should grant the feature")
	}
	if user.HasFeature(models.FeatureAoi) {
		t.Error("aoi should be denied without its flag")
	}
	if user.HasFeature(models.FeatureAnalysis) {
		t.Error("analysis should be denied without its flag")
	}
	if user.HasFeature(models.FeatureReports) {
		t.Error("reports should be denied without its flag")
	}
}

func TestHasFeatureAdminImpliesAll(t *testing.T) {
	admin := models.User{IsAdmin: true}
	for _, feature := range []models.Feature{
		models.FeaturePartMarkings,
		models.FeatureAoi,
		models.FeatureAnalysis,
		models.FeatureDashboard,
		models.FeatureReports,
		models.FeatureAdmin,
	} {
		if !admin.HasFeature(feature) {
			t.Errorf("admin should have feature %q", feature)
		}
	}
}

func TestHasFeatureCSuiteImpliesAllButAdmin(t *testing.T) {
	cSuite := models.User{CSuite: true}
	for _, feature := range []models.Feature{
		models.FeaturePartMarkings,
		models.FeatureAoi,
		models.FeatureAnalysis,
		models.FeatureDashboard,
		models.FeatureReports,
	} {
		if !cSuite.HasFeature(feature) {
			t.Errorf("c_suite should have feature %q", feature)
		}
	}
	if cSuite.HasFeature(models.FeatureAdmin) {
		t.Error("admin feature requires is_admin, c_suite alone is not enough")
	}
}
