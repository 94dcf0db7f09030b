package model

import "testing"

func TestValidBedCategory(t *testing.T) {
	for _, category := range []string{BedCategoryICU, BedCategoryGeneral, BedCategoryEmergency} {
		if !ValidBedCategory(category) {
			t.Errorf("expected %q to be valid", category)
		}
	}
	for _, category := range []string{"", "ICU", "maternity", "beds"} {
		if ValidBedCategory(category) {
			t.Errorf("expected %q to be invalid", category)
		}
	}
}

func TestHospitalBeds(t *testing.T) {
	h := Hospital{
		ICU:       BedBank{Total: 10, Occupied: 3},
		General:   BedBank{Total: 50, Occupied: 20},
		Emergency: BedBank{Total: 5, Occupied: 5},
	}

	if got := h.Beds(BedCategoryICU); got.Total != 10 || got.Occupied != 3 {
		t.Errorf("icu bank mismatch: %+v", got)
	}
	if got := h.Beds(BedCategoryGeneral); got.Total != 50 {
		t.Errorf("general bank mismatch: %+v", got)
	}
	if got := h.Beds("unknown"); got.Total != 0 || got.Occupied != 0 {
		t.Errorf("unknown category should return zero bank, got %+v", got)
	}
}

func TestHospitalPersistsEmbeddedBeds(t *testing.T) {
	db := setupTestDB(t, "hospital", &Hospital{})

	h := Hospital{
		Name:    "Central City Hospital",
		AdminID: 1,
		ICU:     BedBank{Total: 4, Occupied: 2},
	}
	if err := db.Create(&h).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// The embedded columns carry the category prefix.
	var occupied int
	if err := db.Raw("SELECT icu_occupied FROM hospitals WHERE id = ?", h.ID).Scan(&occupied).Error; err != nil {
		t.Fatalf("raw select failed: %v", err)
	}
	if occupied != 2 {
		t.Fatalf("expected icu_occupied 2, got %d", occupied)
	}

	var loaded Hospital
	if err := db.First(&loaded, h.ID).Error; err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.ICU.Total != 4 || loaded.ICU.Occupied != 2 {
		t.Fatalf("embedded bed bank not round-tripped: %+v", loaded.ICU)
	}
}
