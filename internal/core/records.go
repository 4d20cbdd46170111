package core

import "github.com/jackc/pgx/v5/pgtype"

// DestinationRecord is one row ready for the data sink.
// The variants are CustomerRecord and RunRecord.
type DestinationRecord interface {
	Entity() EntityType
	// Values returns only the columns that hold a value, keyed by column name.
	Values() map[string]any
}

// CustomerRecord is a row of the customers table.
type CustomerRecord struct {
	ServiceID            pgtype.Text
	SiteName             pgtype.Text
	SiteStreetName       pgtype.Text
	SiteSuburb           pgtype.Text
	SitePostCode         pgtype.Text
	SiteEmailAddress     pgtype.Text
	SiteFaxNo            pgtype.Text
	PostalAddress        pgtype.Text
	SiteContactFirstName pgtype.Text
	SiteContactLastname  pgtype.Text
	SiteAccountsContact  pgtype.Text
	SiteTelephoneNo1     pgtype.Text
	SiteTelephoneNo2     pgtype.Text
	SitePobox            pgtype.Text
	DeleteTag            pgtype.Bool
	ContractDate         pgtype.Date
	DateCancel           pgtype.Date
	ContractNotes        pgtype.Text
	Notes                pgtype.Text
}

// Entity implements DestinationRecord.
func (CustomerRecord) Entity() EntityType { return EntityCustomers }

// Values implements DestinationRecord.
func (r CustomerRecord) Values() map[string]any {
	out := make(map[string]any)
	putText(out, "service_id", r.ServiceID)
	putText(out, "site_name", r.SiteName)
	putText(out, "site_street_name", r.SiteStreetName)
	putText(out, "site_suburb", r.SiteSuburb)
	putText(out, "site_post_code", r.SitePostCode)
	putText(out, "site_email_address", r.SiteEmailAddress)
	putText(out, "site_fax_no", r.SiteFaxNo)
	putText(out, "postal_address", r.PostalAddress)
	putText(out, "site_contact_first_name", r.SiteContactFirstName)
	putText(out, "site_contact_lastname", r.SiteContactLastname)
	putText(out, "site_accounts_contact", r.SiteAccountsContact)
	putText(out, "site_telephone_no1", r.SiteTelephoneNo1)
	putText(out, "site_telephone_no2", r.SiteTelephoneNo2)
	putText(out, "site_pobox", r.SitePobox)
	if r.DeleteTag.Valid {
		out["delete_tag"] = r.DeleteTag
	}
	if r.ContractDate.Valid {
		out["contract_date"] = r.ContractDate
	}
	if r.DateCancel.Valid {
		out["date_cancel"] = r.DateCancel
	}
	putText(out, "contract_notes", r.ContractNotes)
	putText(out, "notes", r.Notes)
	return out
}

// BuildCustomerRecord builds a CustomerRecord from coerced values.
func BuildCustomerRecord(v FieldValues) DestinationRecord {
	return CustomerRecord{
		ServiceID:            v.Text("service_id"),
		SiteName:             v.Text("site_name"),
		SiteStreetName:       v.Text("site_street_name"),
		SiteSuburb:           v.Text("site_suburb"),
		SitePostCode:         v.Text("site_post_code"),
		SiteEmailAddress:     v.Text("site_email_address"),
		SiteFaxNo:            v.Text("site_fax_no"),
		PostalAddress:        v.Text("postal_address"),
		SiteContactFirstName: v.Text("site_contact_first_name"),
		SiteContactLastname:  v.Text("site_contact_lastname"),
		SiteAccountsContact:  v.Text("site_accounts_contact"),
		SiteTelephoneNo1:     v.Text("site_telephone_no1"),
		SiteTelephoneNo2:     v.Text("site_telephone_no2"),
		SitePobox:            v.Text("site_pobox"),
		DeleteTag:            v.Bool("delete_tag"),
		ContractDate:         v.Date("contract_date"),
		DateCancel:           v.Date("date_cancel"),
		ContractNotes:        v.Text("contract_notes"),
		Notes:                v.Text("notes"),
	}
}

// RunRecord is a row of the runs table.
type RunRecord struct {
	ServiceID   pgtype.Text
	Clients     pgtype.Text
	Suburb      pgtype.Text
	Weeks       pgtype.Text
	WeekDay     pgtype.Text
	Products    pgtype.Text
	Frequency   pgtype.Text
	Technicians pgtype.Text
	Completed   pgtype.Bool
}

// Entity implements DestinationRecord.
func (RunRecord) Entity() EntityType { return EntityRuns }

// Values implements DestinationRecord.
func (r RunRecord) Values() map[string]any {
	out := make(map[string]any)
	putText(out, "service_id", r.ServiceID)
	putText(out, "clients", r.Clients)
	putText(out, "suburb", r.Suburb)
	putText(out, "weeks", r.Weeks)
	putText(out, "week_day", r.WeekDay)
	putText(out, "products", r.Products)
	putText(out, "frequency", r.Frequency)
	putText(out, "technicians", r.Technicians)
	if r.Completed.Valid {
		out["completed"] = r.Completed
	}
	return out
}

// BuildRunRecord builds a RunRecord from coerced values.
func BuildRunRecord(v FieldValues) DestinationRecord {
	return RunRecord{
		ServiceID:   v.Text("service_id"),
		Clients:     v.Text("clients"),
		Suburb:      v.Text("suburb"),
		Weeks:       v.Text("weeks"),
		WeekDay:     v.Text("week_day"),
		Products:    v.Text("products"),
		Frequency:   v.Text("frequency"),
		Technicians: v.Text("technicians"),
		Completed:   v.Bool("completed"),
	}
}

func putText(out map[string]any, col string, t pgtype.Text) {
	if t.Valid {
		out[col] = t
	}
}

// GenericRecord carries coerced values for catalogs without a typed record.
type GenericRecord struct {
	EntityType EntityType
	Fields     FieldValues
}

// Entity implements DestinationRecord.
func (r GenericRecord) Entity() EntityType { return r.EntityType }

// Values implements DestinationRecord.
func (r GenericRecord) Values() map[string]any {
	out := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		out[k] = v
	}
	return out
}
