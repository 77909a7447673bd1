package execution

import "github.com/glorpus-work/updflow/pkg/model"

// Data keys shared by the workflow steps.
var (
	DataPackage                 = NewKey[model.Package]("Package")
	DataInstalledPackageVersion = NewKey[model.PackageVersion]("InstalledPackageVersion")
	DataPackageVersion          = NewKey[model.PackageVersion]("PackageVersion")
	DataManifest                = NewKey[model.Manifest]("Manifest")
	DataInstaller               = NewKey[model.Installer]("Installer")
	DataSearchResult            = NewKey[model.SearchResult]("SearchResult")
	DataPackagesToInstall       = NewKey[[]model.PackageToInstall]("PackagesToInstall")
)
