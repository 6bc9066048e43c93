package category

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookup(t *testing.T) {
	cat := NewCatalog(Defaults())

	got, ok := cat.Get("payroll & benefits")
	require.True(t, ok)
	assert.Equal(t, Payroll, got.Name)
	assert.Equal(t, ClassPayroll, got.Class)

	assert.True(t, cat.Exists(Meals))
	assert.False(t, cat.Exists("Space Travel"))
	assert.Equal(t, ClassDiscretionary, cat.ClassOf(Meals))
	assert.Equal(t, ClassOther, cat.ClassOf("Space Travel"))
	assert.Len(t, cat.ByClass(ClassRevenue), 2)
}

func TestClassWeights(t *testing.T) {
	assert.InDelta(t, 1.0, ClassPayroll.Weight(), 0.001)
	assert.InDelta(t, 0.3, ClassDiscretionary.Weight(), 0.001)
	assert.Greater(t, ClassRent.Weight(), ClassUtilities.Weight())
	assert.Greater(t, ClassDebt.Weight(), ClassSoftware.Weight())

	for _, c := range Defaults() {
		w := c.Class.Weight()
		assert.True(t, w >= 0 && w <= 1, "%s weight %f out of range", c.Name, w)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCategories(&buf, Defaults()))

	got, err := ReadCategories(&buf)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestUnmarshalCategory_Errors(t *testing.T) {
	_, err := UnmarshalCategory([]string{"only", "two"})
	assert.Error(t, err)

	_, err = UnmarshalCategory([]string{"", "rent", ""})
	assert.Error(t, err)

	got, err := UnmarshalCategory([]string{"Custom", "", ""})
	require.NoError(t, err)
	assert.Equal(t, ClassOther, got.Class)
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	cat, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Len(t, cat.All(), len(Defaults()))
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	custom := NewCatalog([]Category{
		{Name: "Coffee Beans", Class: ClassOperating, Description: "Inventory"},
	})
	require.NoError(t, custom.Save(dir))

	_, err := os.Stat(filepath.Join(dir, "categories", "categories.csv"))
	require.NoError(t, err)

	got, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, got.All(), 1)
	assert.Equal(t, ClassOperating, got.ClassOf("coffee beans"))
}
