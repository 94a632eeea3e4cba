package insights

import (
	"embed"
	"io/fs"
)

//go:embed contracts/*.yaml
var embeddedContracts embed.FS

// Bundled contract documents, relative to ContractsFS.
const (
	DashboardContract          = "dashboard.yaml"
	LogisticRegressionContract = "logistic-regression.yaml"
	RandomForestContract       = "random-forest.yaml"
	ProductivityContract       = "productivity.yaml"
)

// ContractsFS exposes the OpenAPI documents describing the dashboard form
// endpoints and the three prediction services.
func ContractsFS() fs.FS {
	sub, err := fs.Sub(embeddedContracts, "contracts")
	if err != nil {
		return embeddedContracts
	}
	return sub
}

// ContractFiles lists the bundled documents in load order.
func ContractFiles() []string {
	return []string{
		DashboardContract,
		LogisticRegressionContract,
		RandomForestContract,
		ProductivityContract,
	}
}
