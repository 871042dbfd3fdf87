package controllers

import (
	"errors"
	"testing"

	"barberbook-backend/models"
	"barberbook-backend/testutil"
)

func codes(list ...string) func() string {
	i := 0
	return func() string {
		code := list[i]
		if i < len(list)-1 {
			i++
		}
		return code
	}
}

func TestCreateShopDrawsAFreePublicCode(t *testing.T) {
	db, err := testutil.OpenSQLite()
	if err != nil {
		t.Fatal(err)
	}

	owner := models.User{Email: "owner@example.com", Password: "password123", Name: "Owner", IsActive: true}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatal(err)
	}
	first := models.Shop{Slug: "usta-berber", Name: "Usta Berber", OwnerUserID: owner.ID}
	if err := createShop(db, &first, codes("TR-1001")); err != nil {
		t.Fatalf("first shop: %v", err)
	}

	second := models.Shop{Slug: "kuafor", Name: "Kuafor", OwnerUserID: owner.ID}
	if err := createShop(db, &second, codes("TR-1001", "TR-1001", "TR-2002")); err != nil {
		t.Fatalf("second shop: %v", err)
	}
	if second.PublicCode != "TR-2002" {
		t.Errorf("second code = %q, want TR-2002", second.PublicCode)
	}

	third := models.Shop{Slug: "makas", Name: "Makas", OwnerUserID: owner.ID}
	err = createShop(db, &third, codes("TR-2002"))
	if !errors.Is(err, errNoPublicCode) {
		t.Fatalf("exhausted codes: expected errNoPublicCode, got %v", err)
	}

	var n int64
	db.Model(&models.Shop{}).Where("public_code = ?", "TR-1001").Count(&n)
	if n != 1 {
		t.Errorf("TR-1001 used by %d shops", n)
	}
}

func TestPublicCodeIsUniqueInTheSchema(t *testing.T) {
	db, err := testutil.OpenSQLite()
	if err != nil {
		t.Fatal(err)
	}
	owner := models.User{Email: "owner@example.com", Password: "password123", Name: "Owner", IsActive: true}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatal(err)
	}

	if err := db.Create(&models.Shop{Slug: "a", Name: "A", OwnerUserID: owner.ID, PublicCode: "TR-5555"}).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&models.Shop{Slug: "b", Name: "B", OwnerUserID: owner.ID, PublicCode: "TR-5555"}).Error; err == nil {
		t.Fatal("duplicate public code was accepted")
	}
	// Shops without a code do not collide with each other.
	for _, slug := range []string{"c", "d"} {
		if err := db.Create(&models.Shop{Slug: slug, Name: slug, OwnerUserID: owner.ID}).Error; err != nil {
			t.Fatalf("shop %s without code: %v", slug, err)
		}
	}
}
