package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeInfo_FieldNames(t *testing.T) {
	graph := loadShop(t)

	contact := graph.GetType(TypeID{crmPkg, "Contact"})
	assert.Equal(t, []string{"ID", "DisplayName", "Emails", "ManagerID", "Attributes", "CustomerName"}, contact.FieldNames())

	var nilInfo *TypeInfo
	assert.Nil(t, nilInfo.FieldNames())
}

func TestTypeInfo_String(t *testing.T) {
	graph := loadShop(t)

	account := graph.GetType(TypeID{crmPkg, "Account"})
	assert.Equal(t, "crm.Account", account.String())
	assert.Equal(t, "[]*crm.Contact", account.Field("Contacts").Type.String())

	contact := graph.GetType(TypeID{crmPkg, "Contact"})
	assert.Equal(t, "[]string", contact.Field("Emails").Type.String())
	assert.Equal(t, "*int64", contact.Field("ManagerID").Type.String())
}

func TestTypeID_String(t *testing.T) {
	assert.Equal(t, "example.com/shop.Order", TypeID{PkgPath: "example.com/shop", Name: "Order"}.String())
	assert.Equal(t, "int", TypeID{Name: "int"}.String())
}

func TestTypeKind_String(t *testing.T) {
	assert.Equal(t, "map", TypeKindMap.String())
	assert.Equal(t, "named", TypeKindNamed.String())
	assert.Equal(t, "unknown", TypeKind(42).String())
}
