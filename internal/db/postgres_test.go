package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/frame"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var rowColumns = []string{"timestamp", "open", "high", "low", "close", "volume", "symbol", "timeframe", "source"}

func newMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		conn.Close()
	})
	return New(conn), mock
}

func testCandle(ts time.Time, closePrice float64) candle.Candle {
	return candle.Candle{
		Timestamp: ts,
		Open:      closePrice,
		High:      closePrice + 1,
		Low:       closePrice - 1,
		Close:     closePrice,
		Volume:    10,
		Symbol:    "BTCIRT",
		Timeframe: "1m",
		Source:    "wallex",
	}
}

func TestMigrate(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS candles")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, p.Migrate(context.Background()))
}

func TestSaveCandles(t *testing.T) {
	p, mock := newMock(t)
	candles := []candle.Candle{testCandle(t0, 100), testCandle(t0.Add(time.Minute), 101)}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO candles"))
	for _, c := range candles {
		prep.ExpectExec().
			WithArgs(c.Symbol, c.Timeframe, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume, c.Source).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, p.SaveCandles(context.Background(), candles))
}

func TestSaveCandlesRollsBackOnError(t *testing.T) {
	p, mock := newMock(t)
	candles := []candle.Candle{testCandle(t0, 100)}

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO candles")).
		ExpectExec().
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := p.SaveCandles(context.Background(), candles)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestSaveCandlesValidatesFirst(t *testing.T) {
	p, _ := newMock(t)
	bad := testCandle(t0, 100)
	bad.High = 1

	err := p.SaveCandles(context.Background(), []candle.Candle{testCandle(t0, 100), bad})
	assert.ErrorContains(t, err, "index 1")
	assert.NoError(t, p.SaveCandles(context.Background(), nil))
}

func TestSaveCandlesUsesContextTransaction(t *testing.T) {
	p, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO candles")).
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := p.GetDB().BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, p.SaveCandles(WithTransaction(ctx, tx), []candle.Candle{testCandle(t0, 100)}))
	require.NoError(t, tx.Commit())
}

func TestGetCandles(t *testing.T) {
	p, mock := newMock(t)
	end := t0.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM candles")+".*"+regexp.QuoteMeta("AND source=$5")).
		WithArgs("BTCIRT", "1m", t0, end, "wallex").
		WillReturnRows(sqlmock.NewRows(rowColumns).
			AddRow(t0, 100.0, 101.0, 99.0, 100.0, 10.0, "BTCIRT", "1m", "wallex").
			AddRow(t0.Add(time.Minute), 101.0, 102.0, 100.0, 101.0, 10.0, "BTCIRT", "1m", "wallex"))

	candles, err := p.GetCandles(context.Background(), "BTCIRT", "1m", "wallex", t0, end)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, testCandle(t0, 100), candles[0])
}

func TestGetCandlesQueryError(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery("FROM candles").WillReturnError(errors.New("boom"))

	_, err := p.GetCandles(context.Background(), "BTCIRT", "1m", "", t0, t0.Add(time.Hour))
	assert.ErrorContains(t, err, "failed to query candles")
}

func TestGetLatestCandle(t *testing.T) {
	p, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY timestamp DESC")).
		WithArgs("BTCIRT", "1m").
		WillReturnRows(sqlmock.NewRows(rowColumns).
			AddRow(t0, 100.0, 101.0, 99.0, 100.0, 10.0, "BTCIRT", "1m", "wallex"))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY timestamp DESC")).
		WithArgs("ETHIRT", "1m").
		WillReturnRows(sqlmock.NewRows(rowColumns))

	latest, err := p.GetLatestCandle(context.Background(), "BTCIRT", "1m")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, t0, latest.Timestamp)

	latest, err = p.GetLatestCandle(context.Background(), "ETHIRT", "1m")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestGetCandleCount(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("BTCIRT", "1h", t0, t0.Add(24*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(24))

	n, err := p.GetCandleCount(context.Background(), "BTCIRT", "1h", t0, t0.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 24, n)
}

func TestGetDataAggregatesFromBaseTimeframe(t *testing.T) {
	p, mock := newMock(t)
	end := t0.Add(10 * time.Minute)
	distinct := regexp.QuoteMeta("SELECT DISTINCT ON (timestamp)")

	mock.ExpectQuery(distinct).
		WithArgs("BTCIRT", "5m", t0, end).
		WillReturnRows(sqlmock.NewRows(rowColumns))

	rows := sqlmock.NewRows(rowColumns)
	for i := 0; i < 10; i++ {
		rows.AddRow(t0.Add(time.Duration(i)*time.Minute), 100.0+float64(i), 101.0+float64(i), 99.0+float64(i), 100.0+float64(i), 10.0, "BTCIRT", "1m", "wallex")
	}
	mock.ExpectQuery(distinct).
		WithArgs("BTCIRT", "1m", t0, end).
		WillReturnRows(rows)

	tbl, err := p.GetData(context.Background(), "BTCIRT", t0, end, "5m")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{t0, t0.Add(5 * time.Minute)}, tbl.Index())

	closes, _ := tbl.Column(frame.ColClose)
	assert.Equal(t, []float64{104, 109}, closes)
	volumes, _ := tbl.Column(frame.ColVolume)
	assert.Equal(t, []float64{50, 50}, volumes)
}

func TestGetDataRejectsBadInterval(t *testing.T) {
	p, _ := newMock(t)
	_, err := p.GetData(context.Background(), "BTCIRT", t0, t0.Add(time.Hour), "3m")
	assert.Error(t, err)
}
