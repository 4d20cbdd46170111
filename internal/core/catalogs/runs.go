package catalogs

import "github.com/JonMunkholm/hygieneops/internal/core"

func init() {
	registerRuns()
}

func registerRuns() {
	core.Register(core.Catalog{
		Entity:  core.EntityRuns,
		Label:   "Runs",
		Version: 1,
		Table:   "runs",
		Fields: []core.FieldDescriptor{
			{Name: "service_id", Label: "Service ID", Description: "Unique service identifier or service number", Required: true, Type: core.FieldText},
			{Name: "clients", Label: "Clients", Description: "Customer name, business name, or site name", Type: core.FieldText},
			{Name: "suburb", Label: "Suburb", Description: "City or suburb", Type: core.FieldText},
			{Name: "weeks", Label: "Weeks", Description: "Weeks of the roster the run falls in", Type: core.FieldText},
			{Name: "week_day", Label: "Week Day", Description: "Day of the week the run is serviced", Type: core.FieldText},
			{Name: "products", Label: "Products", Description: "Products or services provided", Type: core.FieldText},
			{Name: "frequency", Label: "Frequency", Description: "How often the service is performed (daily, weekly, monthly, etc.)", Type: core.FieldText},
			{Name: "technicians", Label: "Technicians", Description: "Technician or technicians assigned to the run", Type: core.FieldText},
			{Name: "completed", Label: "Completed", Description: "Whether the run has been completed (boolean)", Type: core.FieldBool},
		},
		Ignored: ignoredHeaders,
		Build:   core.BuildRunRecord,
	})
}
