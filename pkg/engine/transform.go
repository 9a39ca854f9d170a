package engine

import (
	"strconv"
	"strings"

	"legacymig/pkg/schema"
)

// DefaultEmailDomain is used for generated addresses when none is configured.
const DefaultEmailDomain = "lafamilia.local"

// Options configures a Transformer.
type Options struct {
	EmailDomain string
	Vocabulary  *schema.Vocabulary
}

// Reference kinds reported by Unresolved.
const (
	RefBranch       = "branch"
	RefRole         = "role"
	RefBank         = "bank"
	RefContractType = "contract_type"
)

// UnresolvedRef is a user foreign key that none of the reference tables carry.
type UnresolvedRef struct {
	Kind      string `json:"kind"`
	RecordID  string `json:"recordId"`
	Reference string `json:"reference"`
}

// NearMiss is a branch name that is not in the vocabulary but is close to a
// canonical name. The record keeps its original name.
type NearMiss struct {
	OldID   string  `json:"oldId"`
	Name    string  `json:"name"`
	Closest string  `json:"closest"`
	Score   float64 `json:"score"`
}

// Transformer maps legacy rows to the normalized record shapes. It never
// fails: a missing or malformed column becomes an absent value.
type Transformer struct {
	resolver   *Resolver
	opts       Options
	unresolved []UnresolvedRef
	nearMisses []NearMiss
}

// NewTransformer returns a Transformer resolving references through r.
func NewTransformer(r *Resolver, opts Options) *Transformer {
	if r == nil {
		r = &Resolver{}
	}
	if opts.EmailDomain == "" {
		opts.EmailDomain = DefaultEmailDomain
	}
	if opts.Vocabulary == nil {
		opts.Vocabulary = schema.DefaultVocabulary()
	}
	return &Transformer{
		resolver:   r,
		opts:       opts,
		unresolved: make([]UnresolvedRef, 0),
		nearMisses: make([]NearMiss, 0),
	}
}

// Unresolved returns the references seen by TransformUsers that no lookup
// index could resolve.
func (t *Transformer) Unresolved() []UnresolvedRef {
	return t.unresolved
}

// NearMisses returns the branch names reported by TransformBranches.
func (t *Transformer) NearMisses() []NearMiss {
	return t.nearMisses
}

// TransformUsers converts intra_users rows.
func (t *Transformer) TransformUsers(rows []schema.Row) []schema.User {
	users := make([]schema.User, 0, len(rows))
	for _, row := range rows {
		id := row["id"]
		username := row["username"]

		contract := t.contractType(id, row)
		u := schema.User{
			OldID:                id,
			Username:             username,
			Email:                username + "@" + t.opts.EmailDomain,
			Password:             row["password"],
			FirstName:            row.Optional("firstname"),
			LastName:             row.Optional("lastname"),
			Birthday:             ParseLegacyDate(row["birthday"]),
			BankDetails:          t.bankDetails(id, row),
			Contract:             contract,
			Salary:               parseSalary(row["salary"]),
			IdentificationNumber: row.Optional("idnr"),
			ContractType:         clonePtr(contract),
			ActiveFrom:           ParseLegacyDate(row["active_from"]),
			ActiveTo:             ParseLegacyDate(row["active_to"]),
			OldBranchID:          row.Nullable("branch"),
			OldRoleID:            row.Nullable("role"),
		}

		t.checkRef(RefBranch, id, u.OldBranchID, t.resolver.Branches)
		t.checkRef(RefRole, id, u.OldRoleID, t.resolver.Roles)

		users = append(users, u)
	}
	return users
}

// bankDetails joins bank name, account number and "(account type)" with
// " - ". It needs a bank id other than "0" and an account number.
func (t *Transformer) bankDetails(userID string, row schema.Row) *string {
	bankID := row["bank"]
	account := row["ban"]
	if bankID == "" || bankID == "0" || account == "" {
		return nil
	}

	t.checkRef(RefBank, userID, &bankID, t.resolver.Banks)

	parts := make([]string, 0, 3)
	if name := t.resolver.Banks.Value(bankID, "bank_name"); name != "" {
		parts = append(parts, name)
	}
	parts = append(parts, account)
	if desc := t.resolver.BankAccounts.Value(row["bat"], "bat_desc"); desc != "" {
		parts = append(parts, "("+desc+")")
	}

	details := strings.Join(parts, " - ")
	return &details
}

func (t *Transformer) contractType(userID string, row schema.Row) *string {
	id := row["contract_type"]
	if id == "" || id == "0" {
		return nil
	}
	t.checkRef(RefContractType, userID, &id, t.resolver.ContractTypes)
	desc := t.resolver.ContractTypes.Value(id, "contract_type_desc")
	if desc == "" {
		return nil
	}
	return &desc
}

// checkRef records ref as unresolved when it is set, not "0", and absent
// from ix.
func (t *Transformer) checkRef(kind, recordID string, ref *string, ix *LookupIndex) {
	if ref == nil || *ref == "" || *ref == "0" {
		return
	}
	if _, ok := ix.Lookup(*ref); ok {
		return
	}
	t.unresolved = append(t.unresolved, UnresolvedRef{Kind: kind, RecordID: recordID, Reference: *ref})
}

// parseSalary yields nil for empty, "0" and non-numeric values.
func parseSalary(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// TransformBranches converts intra_branches rows. Known spellings are
// replaced by their canonical name; unknown names are kept as they are.
func (t *Transformer) TransformBranches(rows []schema.Row) []schema.Branch {
	canonicals := t.opts.Vocabulary.BranchNames()

	branches := make([]schema.Branch, 0, len(rows))
	for _, row := range rows {
		b := schema.Branch{
			OldID:   row["branch_id"],
			Name:    row["branch_name"],
			Address: row.Optional("branch_direction"),
		}

		if c, ok := t.opts.Vocabulary.CanonicalBranch(b.Name); ok {
			b.Name = c
		} else if b.Name != "" {
			if closest, score := closestName(b.Name, canonicals); score >= nearMissThreshold {
				t.nearMisses = append(t.nearMisses, NearMiss{
					OldID:   b.OldID,
					Name:    b.Name,
					Closest: closest,
					Score:   score,
				})
			}
		}

		branches = append(branches, b)
	}
	return branches
}

// TransformRoles converts intra_roles rows.
func (t *Transformer) TransformRoles(rows []schema.Row) []schema.Role {
	roles := make([]schema.Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, schema.Role{
			OldID: row["role_id"],
			Name:  row["role_desc"],
		})
	}
	return roles
}

// TransformRequests converts intra_requests rows. A request whose task_id is
// "0" has no linked task yet and is flagged for to-do creation.
func (t *Transformer) TransformRequests(rows []schema.Row) []schema.Request {
	requests := make([]schema.Request, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, schema.Request{
			OldID:            row["request_id"],
			Title:            row["request"],
			Description:      row.Optional("request_desc"),
			Status:           schema.MapRequestStatus(row["status"]),
			OldRequesterID:   row.Nullable("requested_by"),
			OldResponsibleID: row.Nullable("responsible"),
			OldBranchID:      row.Nullable("branch_id"),
			DueDate:          ParseLegacyDate(row["due_date"]),
			CreateTodo:       row["task_id"] == "0",
		})
	}
	return requests
}

// TransformTasks converts intra_tasks rows.
func (t *Transformer) TransformTasks(rows []schema.Row) []schema.Task {
	tasks := make([]schema.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, schema.Task{
			OldID:               row["task_id"],
			Title:               row["task"],
			Description:         taskDescription(row["task_desc"], row["task_desc_ext"]),
			Status:              schema.MapTaskStatus(row["status"]),
			OldResponsibleID:    row.Nullable("user_id"),
			OldQualityControlID: row.Nullable("qc_id"),
			OldBranchID:         row.Nullable("branch_id"),
			OldRoleID:           row.Nullable("role"),
			DueDate:             ParseLegacyDate(row["due_date"]),
			CreatedAt:           ParseLegacyDate(row["started_at"]),
			OldRequestID:        row.Nullable("request_id"),
		})
	}
	return tasks
}

func taskDescription(desc, ext string) *string {
	var out string
	switch {
	case desc != "" && ext != "":
		out = desc + "\n\n" + ext
	case desc != "":
		out = desc
	case ext != "":
		out = ext
	default:
		return nil
	}
	return &out
}

// TransformArticles converts intra_cerebro rows. The free-text author is
// matched against users in order, first on "first last" and then on the
// first name alone; the first user matching either way wins. The author
// name is kept whether or not it resolves.
func (t *Transformer) TransformArticles(rows []schema.Row, users []schema.User) []schema.Article {
	articles := make([]schema.Article, 0, len(rows))
	for _, row := range rows {
		title := row["cerebro_title"]
		author := row["cerebro_author"]

		articles = append(articles, schema.Article{
			OldID:       row["id"],
			Title:       title,
			Content:     row["cerebro_content"],
			Slug:        Slugify(title),
			OldAuthorID: findAuthor(author, users),
			AuthorName:  author,
			CreatedAt:   ParseLegacyDate(row["cerebro_created_at"]),
		})
	}
	return articles
}

func findAuthor(author string, users []schema.User) *string {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil
	}
	for i := range users {
		first := strings.TrimSpace(deref(users[i].FirstName))
		last := strings.TrimSpace(deref(users[i].LastName))
		full := strings.TrimSpace(first + " " + last)
		if full == author || (first != "" && first == author) {
			id := users[i].OldID
			return &id
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
