package entity

// Roles del back-office. La identidad la emite el proveedor de sesión;
// aquí solo se decide qué puede hacer cada rol.
const (
	RoleAdmin    = "Administrador"
	RoleSeller   = "Vendedor"
	RoleTreasury = "Tesorería"
)

// ValidRole indica si el rol es uno de los conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSeller, RoleTreasury:
		return true
	}
	return false
}
