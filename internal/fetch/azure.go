package fetch

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const AzureScheme = "azblob"

// Ensure AzureFetcher implements Fetcher interface.
var _ Fetcher = (*AzureFetcher)(nil)

// Fetches submission artifacts from blob storage.
//
// References look like `azblob://<container>/<blob>` or `azblob:///<blob>` and a bare blob name
// is accepted too. References without a container resolve against the default container.
type AzureFetcher struct {
	az               *azblob.Client
	defaultContainer string
}

func NewAzureFetcher(accountName, accountKey, serviceURL, defaultContainer string) (*AzureFetcher, error) {
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, &azblob.ClientOptions{
		ClientOptions: policy.ClientOptions{
			Retry: policy.RetryOptions{
				RetryDelay: time.Second,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	if defaultContainer == "" {
		return nil, errors.New("default container is required")
	}

	return NewAzureFetcherFromClient(client, defaultContainer), nil
}

func NewAzureFetcherFromClient(client *azblob.Client, defaultContainer string) *AzureFetcher {
	return &AzureFetcher{
		az:               client,
		defaultContainer: defaultContainer,
	}
}

// Container and blob name addressed by ref
func (a *AzureFetcher) Resolve(ref string) (string, string, error) {
	rest, ok := strings.CutPrefix(ref, AzureScheme+"://")
	if !ok {
		rest = ref
	}

	container, blob, found := strings.Cut(rest, "/")
	if !found {
		container, blob = "", rest
	}
	if container == "" {
		container = a.defaultContainer
	}
	if blob == "" {
		return "", "", errors.New("blob name is required")
	}

	return container, blob, nil
}

func (a *AzureFetcher) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	ctx, span := tracer.Start(ctx, "AzureFetcher.Fetch", trace.WithAttributes(
		attribute.String("ref", ref),
	))
	defer span.End()

	container, blob, err := a.Resolve(ref)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid blob reference")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("container", container),
		attribute.String("blob", blob),
	)

	res, err := a.az.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "fetched blob")
	return res.Body, nil
}
