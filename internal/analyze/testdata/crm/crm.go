package crm

type Contact struct {
	ID           int64
	DisplayName  string
	Emails       []string
	ManagerID    *int64
	Attributes   map[string]any
	CustomerName string
}

type Account struct {
	Owner    Contact
	Contacts []*Contact
}
