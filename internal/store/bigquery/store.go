package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/spendsense/spendsense/internal/domain"
	"github.com/spendsense/spendsense/internal/store"
)

const dateFormat = "2006-01-02"

// Store implements store.Source and store.Results against one BigQuery
// dataset. Upserts are expressed as DELETE then streaming insert, matching
// the one-row-per-key contract of signal sets and assignments.
type Store struct {
	client  *bigquery.Client
	project string
	dataset string
}

var (
	_ store.Source  = (*Store)(nil)
	_ store.Results = (*Store)(nil)
)

// New creates a Store with its own BigQuery client. Close releases it.
func New(ctx context.Context, projectID, dataset string) (*Store, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("New: bigquery client: %w", err)
	}
	return NewWithClient(client, projectID, dataset), nil
}

// NewWithClient creates a Store around an existing BigQuery client. The
// caller keeps ownership of the client.
func NewWithClient(client *bigquery.Client, projectID, dataset string) *Store {
	return &Store{client: client, project: projectID, dataset: dataset}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) table(name string) string {
	return "`" + s.project + "." + s.dataset + "." + name + "`"
}

// EnsureTables creates every table the store reads or writes, inferring
// schemas from the row types. Existing tables are left untouched.
func (s *Store) EnsureTables(ctx context.Context) error {
	tables := []struct {
		name string
		row  interface{}
	}{
		{accountsTable, AccountRow{}},
		{transactionsTable, TransactionRow{}},
		{signalSetsTable, SignalSetRow{}},
		{assignmentsTable, AssignmentRow{}},
		{recommendationsTable, RecommendationRow{}},
		{tracesTable, TraceRow{}},
	}

	ds := s.client.DatasetInProject(s.project, s.dataset)
	for _, t := range tables {
		schema, err := bigquery.InferSchema(t.row)
		if err != nil {
			return fmt.Errorf("EnsureTables: inferring schema for %s: %w", t.name, err)
		}
		table := ds.Table(t.name)
		if _, err := table.Metadata(ctx); err == nil {
			continue
		}
		if err := table.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
			return fmt.Errorf("EnsureTables: creating %s: %w", t.name, err)
		}
	}
	return nil
}

// InsertAccounts streams account rows into the accounts table. Used by
// ingestion and the demo seeder.
func (s *Store) InsertAccounts(ctx context.Context, accounts []domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	rows := make([]*AccountRow, len(accounts))
	for i, acc := range accounts {
		rows[i] = rowFromAccount(acc)
	}
	inserter := s.client.DatasetInProject(s.project, s.dataset).Table(accountsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertAccounts: inserting rows: %w", err)
	}
	return nil
}

// InsertTransactions streams transaction rows into the transactions table.
func (s *Store) InsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := make([]*TransactionRow, len(txs))
	for i, tx := range txs {
		rows[i] = rowFromTransaction(tx)
	}
	inserter := s.client.DatasetInProject(s.project, s.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	q := s.client.Query(`
		SELECT DISTINCT user_id
		FROM ` + s.table(accountsTable) + `
		ORDER BY user_id
	`)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: query read: %w", err)
	}

	var users []string
	for {
		var row struct {
			UserID string `bigquery:"user_id"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListUsers: iter next: %w", err)
		}
		users = append(users, row.UserID)
	}
	return users, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string, since time.Time) ([]domain.Transaction, error) {
	q := s.client.Query(`
		SELECT *
		FROM ` + s.table(transactionsTable) + `
		WHERE user_id = @user_id
		  AND date >= @since
		ORDER BY date, transaction_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "since", Value: since.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query read: %w", err)
	}

	var txs []domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: iter next: %w", err)
		}
		txs = append(txs, transactionFromRow(&row))
	}
	return txs, nil
}

func (s *Store) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	q := s.client.Query(`
		SELECT *
		FROM ` + s.table(accountsTable) + `
		WHERE user_id = @user_id
		ORDER BY account_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: query read: %w", err)
	}

	var accounts []domain.Account
	for {
		var row AccountRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAccounts: iter next: %w", err)
		}
		accounts = append(accounts, accountFromRow(&row))
	}
	return accounts, nil
}

func (s *Store) PutSignalSet(ctx context.Context, set domain.SignalSet) error {
	row, err := rowFromSignalSet(set)
	if err != nil {
		return fmt.Errorf("PutSignalSet: %w", err)
	}

	if err := s.deleteByKey(ctx, signalSetsTable, set.UserID, set.Window); err != nil {
		return fmt.Errorf("PutSignalSet: %w", err)
	}

	inserter := s.client.DatasetInProject(s.project, s.dataset).Table(signalSetsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("PutSignalSet: inserting row: %w", err)
	}
	return nil
}

func (s *Store) GetSignalSet(ctx context.Context, userID string, window domain.TimeWindow) (domain.SignalSet, error) {
	q := s.client.Query(`
		SELECT *
		FROM ` + s.table(signalSetsTable) + `
		WHERE user_id = @user_id
		  AND time_window = @time_window
		ORDER BY computed_ts DESC
		LIMIT 1
	`)
	q.Parameters = keyParameters(userID, window)

	it, err := q.Read(ctx)
	if err != nil {
		return domain.SignalSet{}, fmt.Errorf("GetSignalSet: query read: %w", err)
	}

	var row SignalSetRow
	if err := it.Next(&row); err == iterator.Done {
		return domain.SignalSet{}, store.ErrNotFound
	} else if err != nil {
		return domain.SignalSet{}, fmt.Errorf("GetSignalSet: iter next: %w", err)
	}
	set, err := signalSetFromRow(&row)
	if err != nil {
		return domain.SignalSet{}, fmt.Errorf("GetSignalSet: %w", err)
	}
	return set, nil
}

func (s *Store) PutAssignment(ctx context.Context, assignment domain.PersonaAssignment) error {
	row, err := rowFromAssignment(assignment)
	if err != nil {
		return fmt.Errorf("PutAssignment: %w", err)
	}

	if err := s.deleteByKey(ctx, assignmentsTable, assignment.UserID, assignment.Window); err != nil {
		return fmt.Errorf("PutAssignment: %w", err)
	}

	inserter := s.client.DatasetInProject(s.project, s.dataset).Table(assignmentsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("PutAssignment: inserting row: %w", err)
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, userID string, window domain.TimeWindow) (domain.PersonaAssignment, error) {
	q := s.client.Query(`
		SELECT *
		FROM ` + s.table(assignmentsTable) + `
		WHERE user_id = @user_id
		  AND time_window = @time_window
		ORDER BY assigned_ts DESC
		LIMIT 1
	`)
	q.Parameters = keyParameters(userID, window)

	it, err := q.Read(ctx)
	if err != nil {
		return domain.PersonaAssignment{}, fmt.Errorf("GetAssignment: query read: %w", err)
	}

	var row AssignmentRow
	if err := it.Next(&row); err == iterator.Done {
		return domain.PersonaAssignment{}, store.ErrNotFound
	} else if err != nil {
		return domain.PersonaAssignment{}, fmt.Errorf("GetAssignment: iter next: %w", err)
	}
	assignment, err := assignmentFromRow(&row)
	if err != nil {
		return domain.PersonaAssignment{}, fmt.Errorf("GetAssignment: %w", err)
	}
	return assignment, nil
}

func (s *Store) SupersedeRecommendations(ctx context.Context, userID string, window domain.TimeWindow) error {
	q := s.client.Query(`
		UPDATE ` + s.table(recommendationsTable) + `
		SET superseded = TRUE
		WHERE user_id = @user_id
		  AND time_window = @time_window
		  AND superseded = FALSE
	`)
	q.Parameters = keyParameters(userID, window)

	if err := runAndWait(ctx, q); err != nil {
		return fmt.Errorf("SupersedeRecommendations: %w", err)
	}
	return nil
}

func (s *Store) PutRecommendation(ctx context.Context, rec domain.Recommendation, trace domain.DecisionTrace) error {
	traceRow, err := rowFromTrace(trace)
	if err != nil {
		return fmt.Errorf("PutRecommendation: %w", err)
	}

	ds := s.client.DatasetInProject(s.project, s.dataset)
	if err := ds.Table(recommendationsTable).Inserter().Put(ctx, rowFromRecommendation(rec)); err != nil {
		return fmt.Errorf("PutRecommendation: inserting recommendation: %w", err)
	}
	if err := ds.Table(tracesTable).Inserter().Put(ctx, traceRow); err != nil {
		return fmt.Errorf("PutRecommendation: inserting trace: %w", err)
	}
	return nil
}

func (s *Store) ListRecommendations(ctx context.Context, userID string, window domain.TimeWindow, includeSuperseded bool) ([]domain.Recommendation, error) {
	query := `
		SELECT *
		FROM ` + s.table(recommendationsTable) + `
		WHERE user_id = @user_id
		  AND time_window = @time_window
	`
	if !includeSuperseded {
		query += "  AND superseded = FALSE\n"
	}
	query += "ORDER BY shown_ts, recommendation_id"

	q := s.client.Query(query)
	q.Parameters = keyParameters(userID, window)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecommendations: query read: %w", err)
	}

	var recs []domain.Recommendation
	for {
		var row RecommendationRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecommendations: iter next: %w", err)
		}
		recs = append(recs, recommendationFromRow(&row))
	}
	return recs, nil
}

func (s *Store) GetTrace(ctx context.Context, recommendationID string) (domain.DecisionTrace, error) {
	q := s.client.Query(`
		SELECT *
		FROM ` + s.table(tracesTable) + `
		WHERE recommendation_id = @recommendation_id
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "recommendation_id", Value: recommendationID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return domain.DecisionTrace{}, fmt.Errorf("GetTrace: query read: %w", err)
	}

	var row TraceRow
	if err := it.Next(&row); err == iterator.Done {
		return domain.DecisionTrace{}, store.ErrNotFound
	} else if err != nil {
		return domain.DecisionTrace{}, fmt.Errorf("GetTrace: iter next: %w", err)
	}
	trace, err := traceFromRow(&row)
	if err != nil {
		return domain.DecisionTrace{}, fmt.Errorf("GetTrace: %w", err)
	}
	return trace, nil
}

// deleteByKey removes all rows for a (user, window) key from a table.
func (s *Store) deleteByKey(ctx context.Context, table, userID string, window domain.TimeWindow) error {
	q := s.client.Query(`
		DELETE FROM ` + s.table(table) + `
		WHERE user_id = @user_id
		  AND time_window = @time_window
	`)
	q.Parameters = keyParameters(userID, window)

	if err := runAndWait(ctx, q); err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	return nil
}

func keyParameters(userID string, window domain.TimeWindow) []bigquery.QueryParameter {
	return []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "time_window", Value: string(window)},
	}
}

func runAndWait(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}
