package logger

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const customerIDKey contextKey = "customer_id"

// WithCustomerID tags ctx with the credit customer whose row a transaction
// is about to lock, so SQL entries can be traced back to one account
func WithCustomerID(ctx context.Context, customerID string) context.Context {
	return context.WithValue(ctx, customerIDKey, customerID)
}

// GetCustomerID retrieves the customer tag set by WithCustomerID
func GetCustomerID(ctx context.Context) string {
	customerID, _ := ctx.Value(customerIDKey).(string)
	return customerID
}

// Statement kinds reported in the "kind" field
const (
	StatementRead  = "read"
	StatementWrite = "write"
	StatementLock  = "lock"
)

var (
	// bcrypt hashes end up inlined in user inserts and restores
	bcryptHash = regexp.MustCompile(`\$2[aby]?\$\d{2}\$[./A-Za-z0-9]{53}`)
	tableName  = regexp.MustCompile(`(?i)\b(?:FROM|INTO|UPDATE)\s+"?([a-z_]+)"?`)
)

// GormLogger writes GORM statements to zap. Row-lock statements get their own
// threshold because a slow SELECT ... FOR UPDATE on credit_customers means
// two requests are queued on the same account.
type GormLogger struct {
	logger                    *zap.Logger
	logLevel                  gormlogger.LogLevel
	slowThreshold             time.Duration
	lockWaitThreshold         time.Duration
	ignoreRecordNotFoundError bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the threshold for plain reads and writes. Zero disables it.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slowThreshold = threshold
	}
}

// WithLockWaitThreshold sets the threshold for row-lock statements. Zero disables it.
func WithLockWaitThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.lockWaitThreshold = threshold
	}
}

// WithIgnoreRecordNotFoundError drops ErrRecordNotFound entries. Existence
// checks before restore miss on purpose, so this is on by default.
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) {
		l.ignoreRecordNotFoundError = ignore
	}
}

// NewGormLogger creates a GormLogger named "gorm"
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		logger:                    zapLogger.Named("gorm"),
		logLevel:                  level,
		slowThreshold:             200 * time.Millisecond,
		lockWaitThreshold:         50 * time.Millisecond,
		ignoreRecordNotFoundError: true,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Info {
		l.withContext(ctx).Sugar().Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Warn {
		l.withContext(ctx).Sugar().Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Error {
		l.withContext(ctx).Sugar().Errorf(msg, data...)
	}
}

// Trace implements gormlogger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}
	if err != nil && l.ignoreRecordNotFoundError && errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	kind := StatementKind(sql)
	threshold := l.slowThreshold
	if kind == StatementLock {
		threshold = l.lockWaitThreshold
	}
	slow := threshold > 0 && elapsed >= threshold

	switch {
	case err != nil && l.logLevel >= gormlogger.Error:
	case slow && l.logLevel >= gormlogger.Warn:
	case l.logLevel >= gormlogger.Info:
	default:
		return
	}

	fields := []zap.Field{
		zap.String("kind", kind),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", RedactSQL(sql)),
	}
	if table := StatementTable(sql); table != "" {
		fields = append(fields, zap.String("table", table))
	}
	log := l.withContext(ctx)

	switch {
	case err != nil:
		log.Error("sql failed", append(fields, zap.Error(err))...)
	case slow && kind == StatementLock:
		log.Warn("slow row lock", append(fields, zap.Duration("threshold", threshold))...)
	case slow:
		log.Warn("slow sql", append(fields, zap.Duration("threshold", threshold))...)
	default:
		log.Debug("sql", fields...)
	}
}

func (l *GormLogger) withContext(ctx context.Context) *zap.Logger {
	fields := ContextFields(ctx)
	if customerID := GetCustomerID(ctx); customerID != "" {
		fields = append(fields, zap.String("customer_id", customerID))
	}
	if len(fields) == 0 {
		return l.logger
	}
	return l.logger.With(fields...)
}

// StatementKind classifies a rendered statement as a read, a write or a row lock
func StatementKind(sql string) string {
	upper := strings.ToUpper(strings.TrimSpace(sql))
	switch {
	case strings.Contains(upper, "FOR UPDATE"):
		return StatementLock
	case strings.HasPrefix(upper, "INSERT"), strings.HasPrefix(upper, "UPDATE"), strings.HasPrefix(upper, "DELETE"):
		return StatementWrite
	default:
		return StatementRead
	}
}

// StatementTable returns the first table a statement reads or writes
func StatementTable(sql string) string {
	if m := tableName.FindStringSubmatch(sql); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

// RedactSQL masks password hashes in a rendered statement
func RedactSQL(sql string) string {
	return bcryptHash.ReplaceAllString(sql, "[REDACTED]")
}

// MapGormLogLevel maps the app log level to a GORM level. debug and info
// print every statement; anything unknown falls back to warn so slow row
// locks are still reported.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
