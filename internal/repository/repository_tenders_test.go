package repository

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"tendermarket/internal/models"
)

func TestAddTenderDefaults(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	InsertTestInitData(t, repo.db)
	tenders := AddAllTenders(t, repo)

	for _, tender := range tenders {
		if tender.Status != models.TenderCreated {
			t.Errorf("New tender has status '%s', expected '%s'", tender.Status, models.TenderCreated)
		}
		if tender.Version != 1 {
			t.Errorf("New tender has version %d, expected 1", tender.Version)
		}
		if tender.Id == "" {
			t.Error("New tender has empty id")
		}
	}

	// cleanup
	for _, tender := range tenders {
		err := repo.DeleteTender(ctx, tender.Id)
		if err != nil {
			t.Errorf("Could not delete tender %s: %s", tender.Id, err)
		}
	}
}

func TestGetTenders(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	InsertTestInitData(t, repo.db)

	allTenders := AddAllTenders(t, repo)
	if len(allTenders) < len(AllServiceTypes()) {
		t.Fatalf("Expected at least %d tenders, got %d", len(AllServiceTypes()), len(allTenders))
	}

	// no bound, no service type condition
	tenders, err := repo.GetTenders(ctx, TenderFilter{Limit: NoLimit})
	if err != nil {
		t.Fatalf("Could not get tenders: %s", err)
	}
	if len(allTenders) != len(tenders) {
		t.Fatalf("Amount of added and received tenders does not match: %d - %d", len(allTenders), len(tenders))
	}

	// results come back ordered by name
	if !sort.SliceIsSorted(tenders, func(i, j int) bool { return tenders[i].Name < tenders[j].Name }) {
		t.Error("Tenders are not sorted by name")
	}

	// all service types listed equals no condition at all
	tenders, err = repo.GetTenders(ctx, TenderFilter{ServiceTypes: AllServiceTypes(), Limit: NoLimit})
	if err != nil {
		t.Fatalf("Could not get tenders: %s", err)
	}
	if len(allTenders) != len(tenders) {
		t.Fatalf("Amount of added and received tenders does not match: %d - %d", len(allTenders), len(tenders))
	}

	// single service type narrows the list
	tenders, err = repo.GetTenders(ctx, TenderFilter{ServiceTypes: []models.ServiceType{models.STConstruction}, Limit: NoLimit})
	if err != nil {
		t.Fatalf("Could not get tenders: %s", err)
	}
	if len(allTenders) == len(tenders) {
		t.Fatal("Received complete tenders list, despite service type condition")
	}
	for _, tender := range tenders {
		if tender.ServiceType != models.STConstruction {
			t.Errorf("Tender '%s' has service type '%s', expected '%s'", tender.Id, tender.ServiceType, models.STConstruction)
		}
	}

	// creator condition
	tenders, err = repo.GetTenders(ctx, TenderFilter{CreatorUsername: allTenders[0].CreatorUsername, Limit: NoLimit})
	if err != nil {
		t.Fatalf("Could not get tenders: %s", err)
	}
	if len(tenders) == 0 {
		t.Fatal("Received no tenders by creator username")
	}
	for _, tender := range tenders {
		if tender.CreatorUsername != allTenders[0].CreatorUsername {
			t.Errorf("Tender '%s' belongs to '%s', expected '%s'", tender.Id, tender.CreatorUsername, allTenders[0].CreatorUsername)
		}
	}

	// limit
	for _, lim := range []int{1, len(allTenders) / 2, len(allTenders)} {
		tenders, err = repo.GetTenders(ctx, TenderFilter{Limit: lim})
		if err != nil {
			t.Fatalf("Could not get tenders: %s", err)
		}
		if len(tenders) != lim {
			t.Fatalf("Received wrong amount of tenders with limit %d: got %d", lim, len(tenders))
		}
	}

	// limit 0 is a real bound and yields an empty page
	tenders, err = repo.GetTenders(ctx, TenderFilter{Limit: 0})
	if err != nil {
		t.Fatalf("Could not get tenders: %s", err)
	}
	if len(tenders) != 0 {
		t.Fatalf("Received %d tenders with limit 0, expected none", len(tenders))
	}

	// offset
	for _, off := range []int{1, len(allTenders) / 2, len(allTenders)} {
		tenders, err = repo.GetTenders(ctx, TenderFilter{Limit: NoLimit, Offset: off})
		if err != nil {
			t.Fatalf("Could not get tenders: %s", err)
		}
		if len(tenders) != len(allTenders)-off {
			t.Fatalf("Received wrong amount of tenders with offset %d: expected %d, got %d", off, len(allTenders)-off, len(tenders))
		}
	}

	// limit and offset halves reassemble the full list without overlap
	half := (len(allTenders) + 1) / 2
	first, err := repo.GetTenders(ctx, TenderFilter{Limit: half})
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.GetTenders(ctx, TenderFilter{Limit: NoLimit, Offset: half})
	if err != nil {
		t.Fatal(err)
	}
	if len(first)+len(second) != len(allTenders) {
		t.Fatalf("Halves do not reassemble the list: %d + %d != %d", len(first), len(second), len(allTenders))
	}
	seen := map[string]bool{}
	for _, tender := range append(first, second...) {
		if seen[tender.Id] {
			t.Fatalf("Tender '%s' appears in both halves", tender.Id)
		}
		seen[tender.Id] = true
	}
}

func TestUpdateTender(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	InsertTestInitData(t, repo.db)
	tenders := AddAllTenders(t, repo)
	if len(tenders) < 2 {
		t.Fatalf("Expected at least 2 tenders, got %d", len(tenders))
	}

	updated, ok, err := repo.UpdateTender(ctx, tenders[0].Id, "Updated name", "Updated description", models.STManufacture)
	if err != nil {
		t.Fatalf("Could not update tender: %s", err)
	}
	if !ok {
		t.Fatal("Update reported the tender as missing")
	}

	if updated.Name != "Updated name" {
		t.Errorf("Tender name has not been updated: got '%s'", updated.Name)
	}
	if updated.ServiceType != models.STManufacture {
		t.Errorf("Tender service type has not been updated: got '%s'", updated.ServiceType)
	}
	if updated.Version != tenders[0].Version+1 {
		t.Errorf("Wrong tender version after update: expected %d, got %d", tenders[0].Version+1, updated.Version)
	}
	if updated.Status != tenders[0].Status {
		t.Errorf("Update changed the status: expected '%s', got '%s'", tenders[0].Status, updated.Status)
	}

	// the persisted row matches what the update returned
	stored, ok, err := repo.TenderByUUID(ctx, tenders[0].Id)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Updated tender not found")
	}
	if stored.Name != updated.Name || stored.Version != updated.Version {
		t.Errorf("Stored tender differs from update result: %v vs %v", stored, updated)
	}

	// a second update bumps the version again
	updated, ok, err = repo.UpdateTender(ctx, tenders[0].Id, "Updated twice", "", models.STDelivery)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Second update reported the tender as missing")
	}
	if updated.Version != tenders[0].Version+2 {
		t.Errorf("Two updates did not bump the version twice: expected %d, got %d", tenders[0].Version+2, updated.Version)
	}

	// missing tender
	_, ok, err = repo.UpdateTender(ctx, "00000000-0000-0000-0000-000000000000", "x", "", models.STDelivery)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Update reported success on a missing tender")
	}
}

func TestSetTenderStatus(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	InsertTestInitData(t, repo.db)
	tenders := AddAllTenders(t, repo)

	updated, ok, err := repo.SetTenderStatus(ctx, tenders[0].Id, models.TenderPublished)
	if err != nil {
		t.Fatalf("Could not set tender status: %s", err)
	}
	if !ok {
		t.Fatal("Status change reported the tender as missing")
	}
	if updated.Status != models.TenderPublished {
		t.Errorf("Tender status has not been updated: got '%s'", updated.Status)
	}

	// a status change is not an edit and does not bump the version
	if updated.Version != tenders[0].Version {
		t.Errorf("Status change bumped the version: expected %d, got %d", tenders[0].Version, updated.Version)
	}

	_, ok, err = repo.SetTenderStatus(ctx, "00000000-0000-0000-0000-000000000000", models.TenderClosed)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Status change reported success on a missing tender")
	}
}

//// Service

func AddAllTenders(t *testing.T, repo *Repository) []models.Tender {
	var tenders []models.Tender
	ctx := context.Background()

	rows, err := repo.db.Query(`
	SELECT o.id, e.username
	FROM organization_responsible r
		JOIN organization o ON o.id = r.organization_id
		JOIN employee e ON e.id = r.user_id
	`)
	if err != nil {
		t.Fatalf("Could not fetch responsible employees: %s", err)
	}
	defer rows.Close()

	type orgUser struct{ org, username string }
	var pairs []orgUser
	for rows.Next() {
		var p orgUser
		if err := rows.Scan(&p.org, &p.username); err != nil {
			t.Fatal(err)
		}
		pairs = append(pairs, p)
	}

	count := 0
	for _, serviceType := range AllServiceTypes() {
		for _, p := range pairs {
			count++
			tender, err := repo.AddTender(ctx, models.Tender{
				Name:            fmt.Sprintf("Test tender %02d - %s", count, serviceType),
				Description:     "",
				ServiceType:     serviceType,
				OrganizationId:  p.org,
				CreatorUsername: p.username,
			})
			if err != nil {
				t.Fatalf("Could not create tender: %s", err)
			}
			tenders = append(tenders, tender)
		}
	}

	return tenders
}
