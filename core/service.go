package core

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

const loggerName = "oauth1"

// Service exposes the three entry points of the tool: storing the consumer
// credential, running the three-legged authorization flow, and checking the
// stored access token against the profile endpoint.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	errorMapper       ErrorMapper
	persistenceClient any
	storeFactory      StoreFactory
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	signer            OAuth1Signer
	transport         TransportAdapter
	credentialStore   CredentialStore
	verifierPrompt    VerifierPrompt
	confirmer         Confirmer
	jsonAccessor      JSONAccessor
}

type ServiceDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	ErrorMapper       ErrorMapper
	PersistenceClient any
	StoreFactory      StoreFactory
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	Signer            OAuth1Signer
	Transport         TransportAdapter
	CredentialStore   CredentialStore
	VerifierPrompt    VerifierPrompt
	Confirmer         Confirmer
	JSONAccessor      JSONAccessor
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve(loggerName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger(loggerName); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorMapper == nil {
		builder.errorMapper = MapError
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.jsonAccessor == nil {
		builder.jsonAccessor = JSONPathAccessor{}
	}
	signer := NewOAuth1Signer()
	if builder.signer != nil {
		signer = *builder.signer
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.credentialStore == nil && builder.storeFactory != nil {
		store, buildErr := builder.storeFactory.BuildCredentialStore(builder.persistenceClient)
		if buildErr != nil {
			return nil, mapBuildError(builder.errorMapper, buildErr)
		}
		builder.credentialStore = store
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		storeFactory:      builder.storeFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		signer:            signer,
		transport:         builder.transport,
		credentialStore:   builder.credentialStore,
		verifierPrompt:    builder.verifierPrompt,
		confirmer:         builder.confirmer,
		jsonAccessor:      builder.jsonAccessor,
	}, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:            s.logger,
		LoggerProvider:    s.loggerProvider,
		ErrorMapper:       s.errorMapper,
		PersistenceClient: s.persistenceClient,
		StoreFactory:      s.storeFactory,
		ConfigProvider:    s.configProvider,
		OptionsResolver:   s.optionsResolver,
		Signer:            s.signer,
		Transport:         s.transport,
		CredentialStore:   s.credentialStore,
		VerifierPrompt:    s.verifierPrompt,
		Confirmer:         s.confirmer,
		JSONAccessor:      s.jsonAccessor,
	}
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

func (s *Service) requireStore() (CredentialStore, error) {
	if s == nil {
		return nil, fmt.Errorf("core: service is nil")
	}
	if s.credentialStore == nil {
		return nil, newOAuthError("core: credential store is not configured", goerrors.CategoryInternal, ErrorInternal, nil)
	}
	return s.credentialStore, nil
}

func (s *Service) requireTransport() (TransportAdapter, error) {
	if s.transport == nil {
		return nil, newOAuthError("core: transport is not configured", goerrors.CategoryInternal, ErrorInternal, nil)
	}
	return s.transport, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}
