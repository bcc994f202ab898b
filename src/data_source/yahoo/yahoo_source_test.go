package yahoo

import (
	"context"
	"errors"
	"testing"

	"ticker-desk/src/helpers"
	"ticker-desk/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNetwork struct {
	body    string
	err     error
	lastURL string
}

func (f *fakeNetwork) Get(_ context.Context, url string, _ map[string]string) ([]byte, error) {
	f.lastURL = url
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

func TestFetchMetadata_PrefersLongName(t *testing.T) {
	net := &fakeNetwork{body: `{"chart":{"result":[{"meta":{
		"symbol":"AAPL","longName":"Apple Inc.","shortName":"Apple",
		"exchangeName":"NMS","fullExchangeName":"NasdaqGS"}}],"error":null}}`}

	src := NewYahooFinanceSource(net, logger.NewNop("yahoo"))
	src.BaseURL = "http://yahoo.test/"

	md, err := src.FetchMetadata(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "http://yahoo.test/v8/finance/chart/AAPL", net.lastURL)
	assert.Equal(t, "AAPL", md.Ticker)
	assert.Equal(t, "Apple Inc.", md.Name)
	assert.Equal(t, "NMS", md.Exchange)
	assert.False(t, md.FetchedAt.IsZero())
}

func TestFetchMetadata_Fallbacks(t *testing.T) {
	net := &fakeNetwork{body: `{"chart":{"result":[{"meta":{"shortName":"Vodafone","fullExchangeName":"LSE"}}]}}`}

	md, err := NewYahooFinanceSource(net, logger.NewNop("yahoo")).FetchMetadata(context.Background(), "VOD.L")
	require.NoError(t, err)
	assert.Equal(t, "Vodafone", md.Name)
	assert.Equal(t, "LSE", md.Exchange)
}

func TestFetchMetadata_APIError(t *testing.T) {
	net := &fakeNetwork{body: `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`}

	_, err := NewYahooFinanceSource(net, logger.NewNop("yahoo")).FetchMetadata(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not Found")
	assert.True(t, helpers.IsPermanent(err))
}

func TestFetchMetadata_NetworkError(t *testing.T) {
	net := &fakeNetwork{err: errors.New("connection refused")}

	_, err := NewYahooFinanceSource(net, logger.NewNop("yahoo")).FetchMetadata(context.Background(), "AAPL")
	var dsErr *helpers.DataSourceError
	require.True(t, errors.As(err, &dsErr))
}
