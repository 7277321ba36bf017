package rules

// Comments appended to rewritten statements.
const (
	commentClose      = "Best-effort close"
	commentRollback   = "Best-effort rollback"
	commentDisconnect = "Best-effort disconnect"
	commentWrite      = "Error logged by HTTP framework"
	commentLogging    = "Best-effort logging"
	commentStatus     = "Best-effort status update"
	commentAudit      = "Best-effort audit logging"
	commentRand       = "crypto/rand.Read errors are rare"
	commentEncode     = "Error encoding response - already logged by HTTP layer"
	commentProfiling  = "Best-effort profiling"
	commentParsing    = "Best-effort parsing"
	commentCopy       = "Best-effort copy"
	commentTest       = "Best-effort in test"
	commentScan       = "Best-effort scan in verification"
	commentMock       = "Best-effort mock in test"
)

// ruleConstructor builds a fresh, uncompiled rule.
type ruleConstructor func() *Rule

// defaultRules is the built-in catalog, grouped as deferred closes,
// immediate closes, value-producing calls, then helpers seen in tests.
var defaultRules = []ruleConstructor{
	func() *Rule {
		return &Rule{
			Name:     "defer-close",
			Callees:  []string{"rows.Close", "r.Body.Close", "resp.Body.Close", "cursor.Close"},
			Deferred: true,
			Form:     FormDeferDiscard,
			Comment:  commentClose,
		}
	},
	func() *Rule {
		return &Rule{
			Name:     "defer-rollback",
			Callees:  []string{"tx.Rollback"},
			Deferred: true,
			Form:     FormDeferDiscard,
			Comment:  commentRollback,
		}
	},
	func() *Rule {
		return &Rule{
			Name: "close",
			Callees: []string{
				"resp.Body.Close",
				"db.Close",
				"conn.Close",
				"listener.Close",
				"colRows.Close",
				"sshClient.Close",
				"tunnel.listener.Close",
				"tunnel.sshClient.Close",
				"*.pool.Close",
				"p.db.Close",
				"indexCursor.Close",
				"manager.Close",
				"storage.Close",
				"suite.testDB.Close",
				"testDB.Close",
			},
			Comment: commentClose,
		}
	},
	func() *Rule {
		return &Rule{
			Name:    "disconnect",
			Callees: []string{"client.Disconnect", "m.client.Disconnect", "es.Disconnect", "os.Disconnect"},
			Comment: commentDisconnect,
		}
	},
	func() *Rule {
		return &Rule{
			Name:    "http-write",
			Callees: []string{"w.Write"},
			Results: 2,
			Comment: commentWrite,
		}
	},
	func() *Rule {
		return &Rule{
			Name:    "security-event-log",
			Callees: []string{"s.eventLogger.LogSecurityEvent"},
			Comment: commentLogging,
		}
	},
	func() *Rule {
		return &Rule{
			Name:    "store-update-failed",
			Callees: []string{"s.store.Update*Failed"},
			Comment: commentStatus,
		}
	},
	func() *Rule {
		return &Rule{
			Name:    "audit-log",
			Callees: []string{"s.CreateAuditLog"},
			Comment: commentAudit,
		}
	},
	func() *Rule {
		return &Rule{
			Name:    "rand-read",
			Callees: []string{"rand.Read"},
			Results: 2,
			Comment: commentRand,
		}
	},
	func() *Rule {
		return &Rule{
			Name:    "json-encode-response",
			Callees: []string{"json.NewEncoder(w).Encode"},
			Form:    FormCheck,
			Comment: commentEncode,
		}
	},
	func() *Rule {
		return &Rule{
			Name:    "pprof-write",
			Callees: []string{"pprof.WriteHeapProfile", `pprof.Lookup("goroutine").WriteTo`},
			Comment: commentProfiling,
		}
	},
	func() *Rule {
		return &Rule{
			Name:    "sscanf",
			Callees: []string{"fmt.Sscanf"},
			Results: 2,
			Comment: commentParsing,
		}
	},
	func() *Rule {
		return &Rule{
			Name:    "io-copy",
			Callees: []string{"io.Copy"},
			Results: 2,
			Comment: commentCopy,
		}
	},
	func() *Rule {
		return &Rule{
			Name: "test-helper",
			Callees: []string{
				"testDB.InsertTestUser",
				"s.InvalidateSchemaCache",
				"syncStore.ListAccessibleConnections",
				"connStore.Create",
			},
			Comment: commentTest,
		}
	},
	func() *Rule {
		return &Rule{
			Name:    "rows-scan",
			Callees: []string{"rows.Scan"},
			Comment: commentScan,
		}
	},
	func() *Rule {
		return &Rule{
			Name:    "mock-service",
			Callees: []string{"mockSvc.Send*Email"},
			Comment: commentMock,
		}
	},
}

// DefaultCatalog returns the built-in rules, compiled.
func DefaultCatalog() Catalog {
	rules := make([]*Rule, 0, len(defaultRules))
	for _, newRule := range defaultRules {
		rules = append(rules, newRule().MustCompile())
	}
	return Catalog(rules)
}
