package apiv1

import "cledumemoire/internal/domain/model"

// Capability is a route-level permission granted to a role.
type Capability uint8

const (
	CapSubscribe Capability = iota + 1
	CapConfirmPayments
	CapManagePacks
	CapManageUsers
	CapViewAdmin
	CapManageResources
)

var roleCapabilities = map[model.Role]map[Capability]bool{
	model.RoleStudent: {
		CapSubscribe: true,
	},
	model.RoleAccompagnateur: {},
	model.RoleAdmin: {
		CapConfirmPayments: true,
		CapManagePacks:     true,
		CapManageUsers:     true,
		CapViewAdmin:       true,
		CapManageResources: true,
	},
}

// Can reports whether role holds c. Unknown roles hold nothing.
func Can(role model.Role, c Capability) bool {
	return roleCapabilities[role][c]
}
