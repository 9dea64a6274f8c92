package archivetree

import (
	"errors"

	"github.com/caio-sobreiro/dicomarchive/catalog"
)

// Catalog is the catalog.Catalog contract, referenced here under this
// package's own name for readability at call sites (tree.Expand(cat)).
type Catalog = catalog.Catalog

func resolveLeaf(cat Catalog, instanceID string) (leaf Leaf, found bool, err error) {
	info, err := cat.LookupAttachment(instanceID, catalog.ContentDicom)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return Leaf{}, false, nil
		}
		return Leaf{}, false, err
	}
	return Leaf{InstanceID: instanceID, UncompressedSize: info.UncompressedSize}, true, nil
}
