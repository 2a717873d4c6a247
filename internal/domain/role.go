package domain

// Role é o papel do chamador, lido da claim "role" do JWT.
type Role string

const (
	RoleCustomer Role = "customer" // reserva e libera (carrinho, cancelamento)
	RoleManager  Role = "manager"  // também repõe estoque
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleManager
}
