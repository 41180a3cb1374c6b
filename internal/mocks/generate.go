package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/matchstats --output domain/matchstats --outpkg matchstatsmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Cache --dir ../domain/matchstats --output domain/matchstats --outpkg matchstatsmock --filename cache_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name OverrideSource --dir ../domain/matchstats --output domain/matchstats --outpkg matchstatsmock --filename override_source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/mergedrow --output domain/mergedrow --outpkg mergedrowmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name PDFFetcher --dir ../usecase --output usecase --outpkg usecasemock --filename pdf_fetcher_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name PageTextExtractor --dir ../usecase --output usecase --outpkg usecasemock --filename page_text_extractor_mock.go
