package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"signal_bot/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

var header = []string{"timestamp", "type", "price", "amount"}

// CSV: журнал сделок trade_log_<yymmddHHMMSS>.csv. Файл открывается на каждую запись.
type CSV struct {
	mu   sync.Mutex
	path string
}

// NewCSV создаёт каталог и файл с заголовком.
func NewCSV(dir string, now time.Time) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create csv dir: %w", err)
	}
	path := filepath.Join(dir, "trade_log_"+now.Format("060102150405")+".csv")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create csv: %w", err)
	}
	w := csv.NewWriter(f)
	_ = w.Write(header)
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &CSV{path: path}, nil
}

func (c *CSV) Path() string { return c.path }

// Record дописывает строку timestamp,type,price,amount.
func (c *CSV) Record(tr models.TradeRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	_ = w.Write([]string{
		tr.Time.Format(timeLayout),
		string(tr.Side),
		strconv.FormatFloat(tr.Price, 'f', -1, 64),
		strconv.FormatFloat(tr.Amount, 'f', -1, 64),
	})
	w.Flush()
	return w.Error()
}
