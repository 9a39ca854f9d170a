package schema

// Legacy table names in the phpMyAdmin export.
const (
	TableUsers         = "intra_users"
	TableBranches      = "intra_branches"
	TableRoles         = "intra_roles"
	TableRequests      = "intra_requests"
	TableTasks         = "intra_tasks"
	TableCerebro       = "intra_cerebro"
	TableBanks         = "intra_banks"
	TableBankAccounts  = "intra_bats"
	TableContractTypes = "intra_contract_type"
	TableUserBranches  = "intra_users_branches"
	TableUserRoles     = "intra_users_roles"
)

// RequestStatus is the target status vocabulary for requests.
type RequestStatus string

const (
	RequestApproval  RequestStatus = "approval"
	RequestApproved  RequestStatus = "approved"
	RequestDenied    RequestStatus = "denied"
	RequestToImprove RequestStatus = "to_improve"
)

// TaskStatus is the target status vocabulary for tasks.
type TaskStatus string

const (
	TaskOpen           TaskStatus = "open"
	TaskInProgress     TaskStatus = "in_progress"
	TaskImproval       TaskStatus = "improval"
	TaskQualityControl TaskStatus = "quality_control"
	TaskDone           TaskStatus = "done"
)

// Defaults used when a legacy status code is missing or not in the table.
const (
	DefaultRequestStatus = RequestApproval
	DefaultTaskStatus    = TaskOpen
)

// RequestStatusMap maps legacy intra_status ids to request statuses. The old
// system shared one status table between requests and tasks, so task-only
// states collapse onto the nearest request state.
var RequestStatusMap = map[string]RequestStatus{
	"1":   RequestApproval, // open
	"2":   RequestApproval, // approval
	"3":   RequestApproved, // approved
	"4":   RequestApproval, // in progress
	"5":   RequestApproval, // quality control
	"6":   RequestApproved, // done
	"7":   RequestDenied,   // rejected
	"8":   RequestToImprove,
	"999": RequestDenied, // missed
}

// TaskStatusMap maps legacy intra_status ids to task statuses.
var TaskStatusMap = map[string]TaskStatus{
	"1": TaskOpen,
	"2": TaskInProgress,
	"3": TaskImproval,
	"4": TaskQualityControl,
	"5": TaskDone,
	"6": TaskDone,
}

// MapRequestStatus returns the request status for a legacy code, falling back
// to DefaultRequestStatus.
func MapRequestStatus(code string) RequestStatus {
	if s, ok := RequestStatusMap[code]; ok {
		return s
	}
	return DefaultRequestStatus
}

// MapTaskStatus returns the task status for a legacy code, falling back to
// DefaultTaskStatus.
func MapTaskStatus(code string) TaskStatus {
	if s, ok := TaskStatusMap[code]; ok {
		return s
	}
	return DefaultTaskStatus
}
