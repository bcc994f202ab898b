package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ticker-desk/src/helpers"
	"ticker-desk/src/interfaces"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// YahooFinanceSource resolves ticker metadata from the chart endpoint's meta block.
type YahooFinanceSource struct {
	BaseURL string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(netMgr interfaces.INetworkManager, log *logger.Logger) *YahooFinanceSource {
	return &YahooFinanceSource{
		BaseURL: defaultBaseURL,
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

// FetchMetadata fetches name and exchange for ticker.
func (s *YahooFinanceSource) FetchMetadata(ctx context.Context, ticker string) (models.MStockMetadata, error) {
	params := map[string]string{
		"interval": "1d",
		"range":    "1d",
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", strings.TrimRight(s.BaseURL, "/"), url.PathEscape(ticker))

	respBytes, err := s.Network.Get(ctx, endpoint, params)
	if err != nil {
		return models.MStockMetadata{}, helpers.NewDataSourceError(fmt.Sprintf("yahoo lookup failed for %s", ticker), err)
	}

	return parseChartMeta(ticker, respBytes)
}

// -----------------------------------------------------------------------------

type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency         string `json:"currency"`
				Symbol           string `json:"symbol"`
				ExchangeName     string `json:"exchangeName"`
				FullExchangeName string `json:"fullExchangeName"`
				InstrumentType   string `json:"instrumentType"`
				LongName         string `json:"longName"`
				ShortName        string `json:"shortName"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func parseChartMeta(ticker string, data []byte) (models.MStockMetadata, error) {
	var resp YahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.MStockMetadata{}, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.Chart.Error != nil {
		return models.MStockMetadata{}, helpers.Permanent(fmt.Errorf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description))
	}

	if len(resp.Chart.Result) == 0 {
		return models.MStockMetadata{}, helpers.Permanent(fmt.Errorf("no result in response for %s", ticker))
	}

	meta := resp.Chart.Result[0].Meta

	return models.MStockMetadata{
		Ticker:    ticker,
		Name:      firstNonEmpty(meta.LongName, meta.ShortName),
		Exchange:  firstNonEmpty(meta.ExchangeName, meta.FullExchangeName),
		FetchedAt: time.Now().UTC(),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
