// internal/platform/di/store/container.go
package store

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	outdb "barcart/internal/adapters/out/db"
	"barcart/internal/adapters/out/dispatch"
	outfs "barcart/internal/adapters/out/firestore"
	httpout "barcart/internal/adapters/out/http"
	"barcart/internal/adapters/out/mail"
	query "barcart/internal/application/query"
	usecase "barcart/internal/application/usecase"
	orderdom "barcart/internal/domain/order"
	productdom "barcart/internal/domain/product"

	shared "barcart/internal/platform/di/shared"
)

// Container is the storefront DI container.
// Pure DI: build deps only. No routing branching.
type Container struct {
	Infra *shared.Infra

	// Usecases
	CartUC     *usecase.CartUsecase
	CheckoutUC *usecase.CheckoutUsecase

	// Queries (read models)
	CartQuery    *query.CartQuery
	CatalogQuery *query.CatalogQuery

	// Shared plumbing the handlers need
	Products   productdom.Repository
	Orders     orderdom.Repository
	Dispatches *dispatch.Recorder
}

// NewContainer wires the storefront service.
func NewContainer(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil || infra.Firestore == nil {
		return nil, errors.New("di.store: infra/firestore is nil")
	}

	cont := &Container{Infra: infra}

	// repositories
	cartRepo := outfs.NewCartRepositoryFS(infra.Firestore)
	cont.Products = outfs.NewProductRepositoryFS(infra.Firestore)

	if infra.Orders != nil && infra.Orders.Client != nil {
		cont.Orders = outdb.NewOrderRepositoryPG(infra.Orders.Client)
	} else {
		log.Printf("[di.store] order repository not configured (orders will not be recorded)")
	}

	// read models
	cont.CartQuery = query.NewCartQuery(cartRepo)
	cont.CatalogQuery = query.NewCatalogQuery(cont.Products)

	// cart usecase
	cont.CartUC = usecase.NewCartUsecase(cartRepo)

	// gateway client: only built when the option is switched on AND a key
	// can be resolved; otherwise the option is simply not offered.
	var gateway usecase.GatewaySessionCreator
	gatewayEnabled := false
	if infra.Config.ShowGateway && infra.GatewayBaseURL != "" {
		key, err := resolveGatewayKey(ctx, infra.SecretManager, infra.ProjectID, infra.GatewayKeySecret, infra.Config.GatewayPublicKey)
		if err != nil {
			log.Printf("[di.store] WARN: gateway key resolve failed: %v (gateway option disabled)", err)
		} else {
			gateway = httpout.NewGatewaySessionClient(infra.GatewayBaseURL, key)
			gatewayEnabled = true
			log.Printf("[di.store] gateway payment enabled baseURL=%s", infra.GatewayBaseURL)
		}
	} else {
		log.Printf("[di.store] gateway payment disabled (SHOW_GATEWAY=%t baseURL set=%t)", infra.Config.ShowGateway, infra.GatewayBaseURL != "")
	}

	// checkout engine
	cont.Dispatches = dispatch.NewRecorder()
	cont.CheckoutUC = usecase.NewCheckoutUsecase(
		cont.CartUC,
		cont.Orders,
		cont.Dispatches,
		gateway,
		gatewayEnabled,
		uuid.NewString,
	)

	if infra.Config.SendGridAPIKey != "" {
		cont.CheckoutUC = cont.CheckoutUC.WithMailer(
			mail.NewSendGridClient(infra.Config.SendGridAPIKey),
			infra.MailFrom,
		)
		log.Printf("[di.store] confirmation mail enabled from=%s", infra.MailFrom)
	}

	return cont, nil
}

func (c *Container) Close() error {
	// infra owns all closable clients
	return nil
}
