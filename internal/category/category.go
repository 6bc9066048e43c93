// Package category holds the business category catalog and the class each
// category belongs to.
package category

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Class groups categories by how essential their cash flow is.
type Class string

const (
	ClassRevenue       Class = "revenue"
	ClassPayroll       Class = "payroll"
	ClassRent          Class = "rent"
	ClassDebt          Class = "debt"
	ClassTax           Class = "tax"
	ClassInsurance     Class = "insurance"
	ClassUtilities     Class = "utilities"
	ClassSoftware      Class = "software"
	ClassProfessional  Class = "professional"
	ClassOperating     Class = "operating"
	ClassDiscretionary Class = "discretionary"
	ClassOther         Class = "other"
)

// Weight is the business-criticality weight of a class in [0,1].
func (c Class) Weight() float64 {
	switch c {
	case ClassPayroll:
		return 1.0
	case ClassRent:
		return 0.95
	case ClassDebt:
		return 0.9
	case ClassTax:
		return 0.85
	case ClassInsurance:
		return 0.75
	case ClassUtilities:
		return 0.7
	case ClassRevenue:
		return 0.6
	case ClassSoftware, ClassProfessional:
		return 0.5
	case ClassOperating:
		return 0.45
	case ClassDiscretionary:
		return 0.3
	default:
		return 0.4
	}
}

// Category is one row of the catalog.
type Category struct {
	Name        string
	Class       Class
	Description string
}

// Catalog provides lookup over the category list.
type Catalog struct {
	categories []Category
	byName     map[string]Category
}

// NewCatalog creates a Catalog. Lookups are case-insensitive.
func NewCatalog(categories []Category) *Catalog {
	byName := make(map[string]Category, len(categories))
	for _, c := range categories {
		byName[strings.ToLower(c.Name)] = c
	}
	return &Catalog{categories: categories, byName: byName}
}

// catalogFile is the catalog location relative to the data dir.
const catalogFile = "categories/categories.csv"

// Load reads categories/categories.csv from dataDir, falling back to the
// default catalog when the file does not exist.
func Load(dataDir string) (*Catalog, error) {
	f, err := os.Open(filepath.Join(dataDir, catalogFile))
	if err != nil {
		if os.IsNotExist(err) {
			return NewCatalog(Defaults()), nil
		}
		return nil, fmt.Errorf("opening category catalog: %w", err)
	}
	defer f.Close()

	cats, err := ReadCategories(f)
	if err != nil {
		return nil, fmt.Errorf("reading category catalog: %w", err)
	}
	return NewCatalog(cats), nil
}

// Save writes the catalog to categories/categories.csv under dataDir.
func (c *Catalog) Save(dataDir string) error {
	dir := filepath.Join(dataDir, filepath.Dir(catalogFile))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating categories dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dataDir, catalogFile))
	if err != nil {
		return fmt.Errorf("creating category catalog: %w", err)
	}
	defer f.Close()

	return WriteCategories(f, c.categories)
}

// All returns every category.
func (c *Catalog) All() []Category {
	return c.categories
}

// Get returns a category by name.
func (c *Catalog) Get(name string) (Category, bool) {
	cat, ok := c.byName[strings.ToLower(name)]
	return cat, ok
}

// Exists reports whether a category name is in the catalog.
func (c *Catalog) Exists(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// ClassOf returns the class of a category, or ClassOther if unknown.
func (c *Catalog) ClassOf(name string) Class {
	if cat, ok := c.Get(name); ok {
		return cat.Class
	}
	return ClassOther
}

// ByClass returns all categories of the given class.
func (c *Catalog) ByClass(class Class) []Category {
	var result []Category
	for _, cat := range c.categories {
		if cat.Class == class {
			result = append(result, cat)
		}
	}
	return result
}
