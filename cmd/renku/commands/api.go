package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/fivetwenty-io/renku-client/pkg/renku"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// APIEnvelope is the json mode output of the api command.
type APIEnvelope struct {
	Data       interface{}       `json:"data"       yaml:"data"`
	Pagination *renku.Pagination `json:"pagination" yaml:"pagination"`
}

// APIResponse is the full mode output of the api command.
type APIResponse struct {
	StatusCode int               `json:"status_code" yaml:"status_code"`
	Header     map[string]string `json:"header"      yaml:"header"`
	Body       string            `json:"body"        yaml:"body"`
}

type apiOptions struct {
	method    string
	mode      string
	query     []string
	headers   []string
	data      string
	alert     bool
	anonymous bool
}

// NewAPICommand creates the api command.
func NewAPICommand() *cobra.Command {
	opts := &apiOptions{}

	cmd := &cobra.Command{
		Use:   "api PATH",
		Short: "Make an authenticated API request",
		Long: `Send a request to the API gateway and print the result.

PATH is relative to the configured API URL unless it is an absolute URL.
Escaped path segments such as group%2Fproject are sent as they are.

--mode selects how the response is returned:
  json  the parsed body together with its pagination metadata
  text  the body as text
  full  the status, headers and body`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := renku.ParseReturnMode(opts.mode)
			if err != nil {
				return err
			}

			req, err := buildAPIRequest(args[0], opts)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client renku.Client) error {
				return runAPIRequest(ctx, cmd, client, req, mode, opts.fetchOptions())
			})
		},
	}

	cmd.Flags().StringVarP(&opts.method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringVar(&opts.mode, "mode", string(renku.ReturnJSON), "return mode (json, text, full)")
	cmd.Flags().StringArrayVarP(&opts.query, "query", "q", nil, "query parameter as key=value")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "request header as key=value")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "request body")
	cmd.Flags().BoolVar(&opts.alert, "alert", false, "send an alert when the request fails")
	cmd.Flags().BoolVar(&opts.anonymous, "anonymous", false, "renew an expired session through the anonymous login")

	return cmd
}

func (o *apiOptions) fetchOptions() []renku.FetchOption {
	fetchOpts := []renku.FetchOption{renku.WithAlert(o.alert)}
	if o.anonymous {
		fetchOpts = append(fetchOpts, renku.WithAnonymousLogin())
	}

	return fetchOpts
}

func buildAPIRequest(path string, opts *apiOptions) (*renku.Request, error) {
	req := renku.NewRequest(strings.ToUpper(opts.method), path)

	for _, param := range opts.query {
		key, value, err := splitKeyValue(param)
		if err != nil {
			return nil, err
		}

		req = req.WithQuery(key, value)
	}

	for _, header := range opts.headers {
		key, value, err := splitKeyValue(header)
		if err != nil {
			return nil, err
		}

		req = req.WithHeader(key, value)
	}

	if opts.data != "" {
		req = req.WithBody([]byte(opts.data))
	}

	return req, nil
}

func splitKeyValue(value string) (string, string, error) {
	parts := strings.SplitN(value, "=", constants.KeyValueSplitParts)
	if len(parts) != constants.KeyValueSplitParts || strings.TrimSpace(parts[0]) == "" {
		return "", "", fmt.Errorf("%w: %q", constants.ErrInvalidKeyValue, value)
	}

	return strings.TrimSpace(parts[0]), parts[1], nil
}

func runAPIRequest(ctx context.Context, cmd *cobra.Command, client renku.Client, req *renku.Request, mode renku.ReturnMode, opts []renku.FetchOption) error {
	switch mode {
	case renku.ReturnText:
		text, err := client.FetchText(ctx, req, opts...)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		if client.Session().Renewing() && text == "" {
			return renku.ErrRenewalInFlight
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)

		return err
	case renku.ReturnFull:
		resp, err := client.FetchFull(ctx, req, opts...)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		if resp.RenewalInFlight {
			return renku.ErrRenewalInFlight
		}

		return render(cmd, newAPIResponse(resp), renderAPIResponseTable)
	default:
		envelope, err := client.FetchJSON(ctx, req, opts...)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		if envelope.RenewalInFlight {
			return renku.ErrRenewalInFlight
		}

		result := &APIEnvelope{Pagination: envelope.Pagination}
		if len(envelope.Data) > 0 {
			err = json.Unmarshal(envelope.Data, &result.Data)
			if err != nil {
				return fmt.Errorf("parsing response data: %w", err)
			}
		}

		return render(cmd, result, renderAPIEnvelopeTable)
	}
}

func newAPIResponse(resp *renku.Response) *APIResponse {
	result := &APIResponse{
		StatusCode: resp.StatusCode,
		Header:     make(map[string]string, len(resp.Header)),
		Body:       resp.Text(),
	}

	for key, values := range resp.Header {
		result.Header[key] = strings.Join(values, ", ")
	}

	return result
}

func renderAPIEnvelopeTable(w io.Writer, envelope *APIEnvelope) error {
	err := renderJSON(w, envelope.Data)
	if err != nil {
		return err
	}

	pagination := envelope.Pagination
	if pagination == nil || pagination.TotalPages == 0 {
		return nil
	}

	_, err = fmt.Fprintf(w, "Page %d of %d (%.0f%%)\n",
		pagination.CurrentPage, pagination.TotalPages,
		pagination.ComputeProgress()*constants.PercentageMultiplier)

	return err
}

func renderAPIResponseTable(w io.Writer, resp *APIResponse) error {
	table := tablewriter.NewWriter(w)
	table.Header("Header", "Value")

	_ = table.Append("Status", fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))

	keys := make([]string, 0, len(resp.Header))
	for key := range resp.Header {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		_ = table.Append(key, resp.Header[key])
	}

	err := table.Render()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, resp.Body)

	return err
}
