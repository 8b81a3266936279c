package fakeapi

import "fmt"

// Demo tenant and accounts created by SeedDemo. Every demo account uses DemoPassword.
const (
	DemoDomain     = "acme"
	PlatformDomain = "platform"
	DemoPassword   = "secret"
)

// SeedDemo creates the demo tenant with an administrator and an employee, and a
// platform tenant holding the super administrator.
func (s *Server) SeedDemo() error {
	s.AddCompany("Acme Corp", DemoDomain)
	s.AddCompany("Platform", PlatformDomain)

	seeds := []struct {
		domain string
		seed   UserSeed
	}{
		{PlatformDomain, UserSeed{Name: "Root", Email: "root@platform.local", Password: DemoPassword, Role: RoleSuperAdmin}},
		{DemoDomain, UserSeed{Name: "Alice Admin", Email: "admin@acme.com", Password: DemoPassword, Role: RoleCompanyAdmin}},
		{DemoDomain, UserSeed{Name: "Alex Employee", Email: "a@acme.com", Password: DemoPassword, Role: RoleEmployee}},
	}
	for _, u := range seeds {
		if _, err := s.AddUser(u.domain, u.seed); err != nil {
			return fmt.Errorf("seed demo: %w", err)
		}
	}
	return nil
}
