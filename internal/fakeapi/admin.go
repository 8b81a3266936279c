package fakeapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raphaelgruber/tenantchat/internal/models"
)

const (
	defaultPageLimit = 20
	defaultLogLimit  = 50
	maxPageLimit     = 100
)

// pageParams reads page and limit, falling back to defaults for values out of range.
func pageParams(c *gin.Context, defaultLimit int) (page, limit int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 || limit > maxPageLimit {
		limit = defaultLimit
	}
	return page, limit
}

// paginate returns the window of n items for page and the pagination block.
func paginate(n, page, limit int) (from, to int, p models.Pagination) {
	from = min((page-1)*limit, n)
	to = min(from+limit, n)
	p = models.Pagination{
		Total:      int64(n),
		Page:       page,
		Limit:      limit,
		TotalPages: int64((n + limit - 1) / limit),
	}
	return from, to, p
}

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func (s *Server) listUsers(c *gin.Context) {
	caller := currentAccount(c)
	page, limit := pageParams(c, defaultPageLimit)
	search := strings.TrimSpace(c.Query("search"))

	s.mu.Lock()
	var users []models.User
	for _, u := range s.users {
		if u.CompanyID == caller.CompanyID && matches(search, u.Name, u.Email, u.Username) {
			users = append(users, u.User)
		}
	}
	s.mu.Unlock()

	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].ID > users[j].ID
	})
	from, to, p := paginate(len(users), page, limit)
	ok(c, http.StatusOK, "Users retrieved successfully", models.UserPage{
		Users:      append([]models.User{}, users[from:to]...),
		Pagination: p,
	})
}

type createUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Username   string `json:"username"`
	RoleID     string `json:"role_id"`
	Department string `json:"department"`
	Position   string `json:"position"`
	IsActive   bool   `json:"is_active"`
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" || req.RoleID == "" {
		fail(c, http.StatusBadRequest, "Name, email, password and role are required")
		return
	}
	caller := currentAccount(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	role, found := s.roles[req.RoleID]
	if !found || role.CompanyID != caller.CompanyID {
		fail(c, http.StatusBadRequest, "Invalid role")
		return
	}
	acc, err := s.createUserLocked(s.companies[caller.CompanyID], role, req.Name, req.Email, req.Password)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	acc.Username = req.Username
	acc.Department = req.Department
	acc.Position = req.Position
	acc.IsActive = req.IsActive
	ok(c, http.StatusCreated, "User created successfully", acc.User)
}

type updateUserRequest struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	Department string `json:"department"`
	Position   string `json:"position"`
	IsActive   *bool  `json:"is_active"`
	RoleID     string `json:"role_id"`
}

func (s *Server) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	caller := currentAccount(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, found := s.users[c.Param("id")]
	if !found || acc.CompanyID != caller.CompanyID {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if req.RoleID != "" {
		role, found := s.roles[req.RoleID]
		if !found || role.CompanyID != caller.CompanyID {
			fail(c, http.StatusBadRequest, "Invalid role")
			return
		}
		acc.RoleID = role.ID
		acc.RoleName = role.Name
		acc.Permissions = append([]string{}, role.Permissions...)
	}
	if req.Name != "" {
		acc.Name = req.Name
	}
	if req.Username != "" {
		acc.Username = req.Username
	}
	if req.Department != "" {
		acc.Department = req.Department
	}
	if req.Position != "" {
		acc.Position = req.Position
	}
	if req.IsActive != nil {
		acc.IsActive = *req.IsActive
	}
	acc.UpdatedAt = s.now()
	ok(c, http.StatusOK, "User updated successfully", nil)
}

func (s *Server) deactivateUser(c *gin.Context) {
	caller := currentAccount(c)
	id := c.Param("id")
	if id == caller.ID {
		fail(c, http.StatusBadRequest, "You cannot deactivate your own account")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, found := s.users[id]
	if !found || acc.CompanyID != caller.CompanyID {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	acc.IsActive = false
	acc.UpdatedAt = s.now()
	ok(c, http.StatusOK, "User deactivated successfully", nil)
}

func (s *Server) listRoles(c *gin.Context) {
	caller := currentAccount(c)

	s.mu.Lock()
	roles := make([]models.RoleInfo, 0)
	for _, r := range s.roles {
		if r.CompanyID == caller.CompanyID {
			roles = append(roles, *r)
		}
	}
	s.mu.Unlock()

	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	ok(c, http.StatusOK, "Roles retrieved successfully", roles)
}

func (s *Server) listActivityLogs(c *gin.Context) {
	caller := currentAccount(c)
	page, limit := pageParams(c, defaultLogLimit)

	s.mu.Lock()
	var logs []models.ActivityLog
	for i := len(s.logs) - 1; i >= 0; i-- {
		if s.logs[i].CompanyID == caller.CompanyID {
			logs = append(logs, s.logs[i])
		}
	}
	s.mu.Unlock()

	from, to, p := paginate(len(logs), page, limit)
	ok(c, http.StatusOK, "Activity logs retrieved successfully", models.ActivityLogPage{
		Logs:       append([]models.ActivityLog{}, logs[from:to]...),
		Pagination: p,
	})
}

type createCompanyRequest struct {
	CompanyName   string `json:"company_name"`
	Domain        string `json:"domain"`
	Email         string `json:"email"`
	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

func (s *Server) createCompany(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CompanyName == "" || req.Domain == "" || req.AdminEmail == "" || req.AdminPassword == "" {
		fail(c, http.StatusBadRequest, "Company name, domain and admin credentials are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.companyByDomainLocked(req.Domain) != nil {
		fail(c, http.StatusBadRequest, "Company domain already exists")
		return
	}
	id := s.addCompanyLocked(req.CompanyName, req.Domain, req.Email)
	company := s.companies[id]
	adminName := req.AdminName
	if adminName == "" {
		adminName = "Administrator"
	}
	admin, err := s.createUserLocked(company, s.roleByNameLocked(id, RoleCompanyAdmin), adminName, req.AdminEmail, req.AdminPassword)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, http.StatusCreated, "Company created successfully", gin.H{
		"company": *company,
		"admin":   admin.User,
	})
}

func (s *Server) listCompanies(c *gin.Context) {
	page, limit := pageParams(c, defaultPageLimit)
	search := strings.TrimSpace(c.Query("search"))

	s.mu.Lock()
	var companies []models.Company
	for _, co := range s.companies {
		if matches(search, co.Name, co.Domain) {
			companies = append(companies, *co)
		}
	}
	s.mu.Unlock()

	sort.Slice(companies, func(i, j int) bool { return companies[i].Domain < companies[j].Domain })
	from, to, p := paginate(len(companies), page, limit)
	ok(c, http.StatusOK, "Companies retrieved successfully", models.CompanyPage{
		Companies:  append([]models.Company{}, companies[from:to]...),
		Pagination: p,
	})
}

func (s *Server) getCompany(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	co, found := s.companies[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "Company not found")
		return
	}
	ok(c, http.StatusOK, "Company retrieved successfully", *co)
}

func (s *Server) deactivateCompany(c *gin.Context) {
	if c.Param("id") == currentAccount(c).CompanyID {
		fail(c, http.StatusBadRequest, "You cannot deactivate your own company")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	co, found := s.companies[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "Company not found")
		return
	}
	co.IsActive = false
	co.UpdatedAt = s.now()
	ok(c, http.StatusOK, "Company deactivated successfully", nil)
}
