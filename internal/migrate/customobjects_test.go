package migrate

import (
	"context"
	"testing"

	"github.com/johnwards/hubsync/internal/domain"
)

func projectSchema() domain.ObjectSchema {
	return domain.ObjectSchema{
		Name:                   "projects",
		Labels:                 domain.SchemaLabels{Singular: "Project", Plural: "Projects"},
		PrimaryDisplayProperty: "project_name",
		FullyQualifiedName:     "p123_projects",
	}
}

func TestCustomObjectMigrationDedupByDisplayProperty(t *testing.T) {
	src, dst, source, dest := newPortals(t)
	schema := projectSchema()
	objType := schema.ObjectType()

	srcID := src.AddObject(objType, map[string]string{
		"project_name": "Apollo", "status": "active",
	})
	existing := dst.AddObject(objType, map[string]string{
		"project_name": "Apollo",
	})
	src.AddObject(objType, map[string]string{
		"project_name": "Gemini",
	})

	m := NewCustomObjectMigrator(source, dest, schema, testOptions())
	res, err := m.Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if len(res.Created) != 1 || len(res.Updated) != 1 {
		t.Fatalf("created/updated = %d/%d, want 1/1", len(res.Created), len(res.Updated))
	}
	if mapped, _ := res.IDMap.Lookup(srcID); mapped != existing {
		t.Errorf("IDMap[%s] = %q, want %q", srcID, mapped, existing)
	}
	if n := len(dst.Objects(objType)); n != 2 {
		t.Errorf("destination records = %d, want 2", n)
	}
}

func TestCustomObjectMigrationNoDisplayPropertyAlwaysCreates(t *testing.T) {
	src, dst, source, dest := newPortals(t)
	schema := projectSchema()
	schema.PrimaryDisplayProperty = ""
	objType := schema.ObjectType()

	src.AddObject(objType, map[string]string{"status": "active"})
	dst.AddObject(objType, map[string]string{"status": "active"})

	m := NewCustomObjectMigrator(source, dest, schema, testOptions())
	res, err := m.Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if len(res.Created) != 1 || len(res.Updated) != 0 {
		t.Fatalf("created/updated = %d/%d, want 1/0", len(res.Created), len(res.Updated))
	}
	if n := len(dst.Objects(objType)); n != 2 {
		t.Errorf("destination records = %d, want 2", n)
	}
}
