package database

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"churn-backtest/pkg/models"

	_ "github.com/go-sql-driver/mysql"
)

// Columns the pipeline needs from the input; anything else in the file
// (date_invoice, branch_id, product_id, ...) is ignored.
var requiredColumns = []string{"client_id", "date_order", "sales_net", "quantity", "order_channel"}

var validIdent = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open accepts DSNs in mariadb:// or mysql:// URL form and normalizes them
// to the MySQL driver format before connecting.
func Open(dsn string) (*sql.DB, string, error) {
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, mysqlDSN, nil
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("incomplete dsn (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// LoadTransactions reads the transaction log from a MySQL/MariaDB table.
// Rows are returned unordered; the Store sorts them.
func LoadTransactions(ctx context.Context, db *sql.DB, tableName string) ([]models.Transaction, error) {
	if !validIdent.MatchString(tableName) {
		return nil, fmt.Errorf("invalid table name %q", tableName)
	}

	q := fmt.Sprintf(`
		SELECT client_id, date_order, sales_net, quantity, order_channel
		FROM %s
	`, tableName)

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", tableName, err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var (
			clientID string
			date     time.Time
			salesNet sql.NullFloat64
			quantity sql.NullFloat64
			channel  sql.NullString
		)
		if err := rows.Scan(&clientID, &date, &salesNet, &quantity, &channel); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tableName, err)
		}
		txs = append(txs, models.Transaction{
			ClientID:     clientID,
			DateOrder:    truncateDay(date),
			SalesNet:     salesNet.Float64,
			Quantity:     quantity.Float64,
			OrderChannel: channel.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

// LoadCSV reads the transaction log from a semicolon-separated file with a
// header row. Column positions are resolved from the header, so extra
// columns and arbitrary ordering are accepted. An unparseable date_order is
// fatal: the pipeline cannot window data without valid timestamps.
func LoadCSV(path string) ([]models.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(r io.Reader) ([]models.Transaction, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q in header", name)
		}
	}

	var txs []models.Transaction
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line+1, err)
		}
		line++

		date, err := parseDate(rec[col["date_order"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: date_order: %w", line, err)
		}
		salesNet, err := strconv.ParseFloat(strings.TrimSpace(rec[col["sales_net"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: sales_net: %w", line, err)
		}
		quantity, err := strconv.ParseFloat(strings.TrimSpace(rec[col["quantity"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: quantity: %w", line, err)
		}

		txs = append(txs, models.Transaction{
			ClientID:     strings.TrimSpace(rec[col["client_id"]]),
			DateOrder:    date,
			SalesNet:     salesNet,
			Quantity:     quantity,
			OrderChannel: strings.TrimSpace(rec[col["order_channel"]]),
		})
	}
	return txs, nil
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
