package pipeline

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"legacymig/pkg/engine"
	"legacymig/pkg/parser"
	"legacymig/pkg/report"
	"legacymig/pkg/schema"
)

// TransformOptions tunes TransformExport.
type TransformOptions struct {
	EmailDomain string
	Vocabulary  *schema.Vocabulary
}

// TransformExport converts every legacy table of export into the normalized
// dataset. Users are transformed first because articles and relations refer
// to them.
func TransformExport(export *parser.ExportResult, opts TransformOptions, log zerolog.Logger) (*schema.Dataset, *report.Summary) {
	summary := report.NewSummary(uuid.NewString(), report.StageTransform)
	log = log.With().Str("run_id", summary.RunID).Logger()

	resolver := engine.NewResolver(export)
	summary.LookupStats = map[string]engine.LookupStats{
		schema.TableBranches:      resolver.Branches.Stats,
		schema.TableRoles:         resolver.Roles.Stats,
		schema.TableBanks:         resolver.Banks.Stats,
		schema.TableBankAccounts:  resolver.BankAccounts.Stats,
		schema.TableContractTypes: resolver.ContractTypes.Stats,
	}

	tr := engine.NewTransformer(resolver, engine.Options{
		EmailDomain: opts.EmailDomain,
		Vocabulary:  opts.Vocabulary,
	})

	users := tr.TransformUsers(export.Rows(schema.TableUsers))
	ds := &schema.Dataset{
		Users:        users,
		Branches:     tr.TransformBranches(export.Rows(schema.TableBranches)),
		Roles:        tr.TransformRoles(export.Rows(schema.TableRoles)),
		Requests:     tr.TransformRequests(export.Rows(schema.TableRequests)),
		Tasks:        tr.TransformTasks(export.Rows(schema.TableTasks)),
		Articles:     tr.TransformArticles(export.Rows(schema.TableCerebro), users),
		UserBranches: engine.ReconcileBranches(users, export.Rows(schema.TableUserBranches)),
		UserRoles:    engine.ReconcileRoles(users, export.Rows(schema.TableUserRoles)),
	}

	for _, name := range []string{schema.TableUsers, schema.TableBranches, schema.TableRoles} {
		if export.Rows(name) == nil {
			log.Warn().Str("table", name).Msg("table missing from export")
		}
	}
	for _, w := range export.Warnings {
		log.Warn().Str("table", w.Table).Int("row", w.Row).Msg(w.Message)
	}

	summary.Warnings = len(export.Warnings)
	summary.AddUnresolved(tr.Unresolved())
	summary.NearMisses = append(summary.NearMisses, tr.NearMisses()...)

	summary.SetCount("users", len(ds.Users))
	summary.SetCount("branches", len(ds.Branches))
	summary.SetCount("roles", len(ds.Roles))
	summary.SetCount("requests", len(ds.Requests))
	summary.SetCount("tasks", len(ds.Tasks))
	summary.SetCount("articles", len(ds.Articles))
	summary.SetCount("user_branches", len(ds.UserBranches))
	summary.SetCount("user_roles", len(ds.UserRoles))
	summary.Finish()

	return ds, summary
}
