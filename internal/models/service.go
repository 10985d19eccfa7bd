package models

// ServiceCatalog is the fixed set of transactions an office window can
// process, grouped the way the registration form presents them.
var ServiceCatalog = map[string][]string{
	"Driver's License Services": {
		"New Driver's License (Non-Professional)",
		"New Driver's License (Professional)",
		"Driver's License Renewal",
		"Student Permit Application",
		"Duplicate License",
	},
	"Vehicle Registration Services": {
		"New Vehicle Registration",
		"Vehicle Registration Renewal",
		"Transfer Of Ownership",
	},
	"Document Services": {
		"OR/CR Request",
		"Clearance Certificate",
	},
	"Testing Services": {
		"Written Exam Scheduling",
		"Driving Test Scheduling",
	},
}

var catalogIndex = buildCatalogIndex()

func buildCatalogIndex() map[string]bool {
	index := make(map[string]bool)
	for _, services := range ServiceCatalog {
		for _, name := range services {
			index[name] = true
		}
	}
	return index
}

func ValidService(name string) bool {
	return catalogIndex[name]
}
