package catalogs

import "github.com/JonMunkholm/hygieneops/internal/core"

func init() {
	registerCustomers()
}

func registerCustomers() {
	core.Register(core.Catalog{
		Entity:  core.EntityCustomers,
		Label:   "Customers",
		Version: 1,
		Table:   "customers",
		Fields: []core.FieldDescriptor{
			{Name: "service_id", Label: "Service ID", Description: "Unique service identifier or service number", Required: true, Type: core.FieldText},
			{Name: "site_name", Label: "Site Name", Description: "Customer name, business name, or site name", Required: true, Type: core.FieldText},
			{Name: "site_street_name", Label: "Street Name", Description: "Street address", Type: core.FieldText},
			{Name: "site_suburb", Label: "Suburb", Description: "City or suburb", Type: core.FieldText},
			{Name: "site_post_code", Label: "Post Code", Description: "Postal/ZIP code", Type: core.FieldText},
			{Name: "site_email_address", Label: "Email Address", Description: "Email address", Type: core.FieldText},
			{Name: "site_fax_no", Label: "Fax No", Description: "Fax number", Type: core.FieldText},
			{Name: "postal_address", Label: "Postal Address", Description: "Full postal address", Type: core.FieldText},
			{Name: "site_contact_first_name", Label: "Contact First Name", Description: "Contact first name", Type: core.FieldText},
			{Name: "site_contact_lastname", Label: "Contact Last Name", Description: "Contact last name", Type: core.FieldText},
			{Name: "site_accounts_contact", Label: "Accounts Contact", Description: "Accounts contact person", Type: core.FieldText},
			{Name: "site_telephone_no1", Label: "Telephone No 1", Description: "Primary phone number", Type: core.FieldText},
			{Name: "site_telephone_no2", Label: "Telephone No 2", Description: "Secondary phone number", Type: core.FieldText},
			{Name: "site_pobox", Label: "PO Box", Description: "PO Box number", Type: core.FieldText},
			{Name: "delete_tag", Label: "Delete Tag", Description: "Delete flag (boolean)", Type: core.FieldBool},
			{Name: "contract_date", Label: "Contract Date", Description: "Contract start date", Type: core.FieldDate},
			{Name: "date_cancel", Label: "Date Cancel", Description: "Cancellation date", Type: core.FieldDate},
			{Name: "contract_notes", Label: "Contract Notes", Description: "Contract notes", Type: core.FieldText},
			{Name: "notes", Label: "Notes", Description: "General notes", Type: core.FieldText},
		},
		Ignored: ignoredHeaders,
		Build:   core.BuildCustomerRecord,
	})
}
