package schema

// Row is one flat record from the legacy database export. Every legacy column
// is a string; a column that was NULL in the export is absent from the map.
type Row map[string]string

// Get returns the value of column and whether it was present.
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Optional returns a pointer to the column value, or nil when the column is
// absent or empty.
func (r Row) Optional(column string) *string {
	v, ok := r[column]
	if !ok || v == "" {
		return nil
	}
	return &v
}

// Nullable returns a pointer to the column value, or nil only when the column
// is absent. Empty strings are preserved.
func (r Row) Nullable(column string) *string {
	v, ok := r[column]
	if !ok {
		return nil
	}
	return &v
}

// Table is a named sequence of legacy rows.
type Table struct {
	Name string `json:"name"`
	Rows []Row  `json:"data"`
}

// UserCandidate is a user recovered from a snapshot document.
type UserCandidate struct {
	Username string  `json:"username"`
	FullName *string `json:"full_name"`
	LastDay  *string `json:"last_day"`
}

// RequestCandidate is a request row recovered from a snapshot document.
// RawText always holds the full quoted label so a misassigned split can be
// corrected downstream.
type RequestCandidate struct {
	Title       string `json:"title"`
	RequestedBy string `json:"requested_by"`
	Responsible string `json:"responsible"`
	Status      string `json:"status"`
	Date        string `json:"date"`
	RawText     string `json:"raw_text"`
}

// ArticleCandidate is a knowledge-base article title recovered from a snapshot.
type ArticleCandidate struct {
	Title string `json:"title"`
}

// Candidates groups every record candidate found in one or more documents.
type Candidates struct {
	Users    []UserCandidate    `json:"users"`
	Branches []string           `json:"branches"`
	Roles    []string           `json:"roles"`
	Requests []RequestCandidate `json:"requests"`
	Articles []ArticleCandidate `json:"articles"`
}

// NewCandidates returns an empty Candidates with non-nil slices, so that
// empty kinds serialize as [] instead of null.
func NewCandidates() *Candidates {
	return &Candidates{
		Users:    make([]UserCandidate, 0),
		Branches: make([]string, 0),
		Roles:    make([]string, 0),
		Requests: make([]RequestCandidate, 0),
		Articles: make([]ArticleCandidate, 0),
	}
}

// User is the normalized target shape of intra_users.
type User struct {
	OldID                string   `json:"old_id"`
	Username             string   `json:"username"`
	Email                string   `json:"email"`
	Password             string   `json:"password"`
	FirstName            *string  `json:"firstName"`
	LastName             *string  `json:"lastName"`
	Birthday             *string  `json:"birthday"`
	BankDetails          *string  `json:"bankDetails"`
	Contract             *string  `json:"contract"`
	Salary               *float64 `json:"salary"`
	IdentificationNumber *string  `json:"identificationNumber"`
	ContractType         *string  `json:"contractType"`
	ActiveFrom           *string  `json:"activeFrom"`
	ActiveTo             *string  `json:"activeTo"`
	OldBranchID          *string  `json:"old_branch_id"`
	OldRoleID            *string  `json:"old_role_id"`
}

// Branch is the normalized target shape of intra_branches.
type Branch struct {
	OldID   string  `json:"old_id"`
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

// Role is the normalized target shape of intra_roles.
type Role struct {
	OldID       string  `json:"old_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// Request is the normalized target shape of intra_requests.
type Request struct {
	OldID            string        `json:"old_id"`
	Title            string        `json:"title"`
	Description      *string       `json:"description"`
	Status           RequestStatus `json:"status"`
	OldRequesterID   *string       `json:"old_requester_id"`
	OldResponsibleID *string       `json:"old_responsible_id"`
	OldBranchID      *string       `json:"old_branch_id"`
	DueDate          *string       `json:"dueDate"`
	CreateTodo       bool          `json:"createTodo"`
}

// Task is the normalized target shape of intra_tasks.
type Task struct {
	OldID               string     `json:"old_id"`
	Title               string     `json:"title"`
	Description         *string    `json:"description"`
	Status              TaskStatus `json:"status"`
	OldResponsibleID    *string    `json:"old_responsible_id"`
	OldQualityControlID *string    `json:"old_quality_control_id"`
	OldBranchID         *string    `json:"old_branch_id"`
	OldRoleID           *string    `json:"old_role_id"`
	DueDate             *string    `json:"dueDate"`
	CreatedAt           *string    `json:"createdAt"`
	OldRequestID        *string    `json:"old_request_id"`
}

// Article is the normalized target shape of intra_cerebro. OldAuthorID and
// AuthorName are both always emitted so the consuming store can choose.
type Article struct {
	OldID       string  `json:"old_id"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Slug        string  `json:"slug"`
	OldAuthorID *string `json:"old_author_id"`
	AuthorName  string  `json:"author_name"`
	CreatedAt   *string `json:"createdAt"`
}

// UserBranch is one user-to-branch relation with its active flag.
type UserBranch struct {
	OldUserID   string `json:"old_user_id"`
	OldBranchID string `json:"old_branch_id"`
	LastUsed    bool   `json:"lastUsed"`
}

// UserRole is one user-to-role relation with its active flag.
type UserRole struct {
	OldUserID string `json:"old_user_id"`
	OldRoleID string `json:"old_role_id"`
	LastUsed  bool   `json:"lastUsed"`
}

// Dataset holds every normalized record collection produced by one run.
type Dataset struct {
	Users        []User       `json:"users"`
	Branches     []Branch     `json:"branches"`
	Roles        []Role       `json:"roles"`
	Requests     []Request    `json:"requests"`
	Tasks        []Task       `json:"tasks"`
	Articles     []Article    `json:"articles"`
	UserBranches []UserBranch `json:"userBranches"`
	UserRoles    []UserRole   `json:"userRoles"`
}
