package earthengine

// Expression is a serialized Earth Engine expression graph, the wire
// format accepted by the value:compute and maps endpoints. Nodes nest
// directly inside their arguments; the top-level map exists so a node
// can be shared by reference, but this client only ever emits one root.
type Expression struct {
	Values map[string]*ValueNode `json:"values"`
	Result string                `json:"result"`
}

// NewExpression wraps a root node into an Expression.
func NewExpression(root *ValueNode) *Expression {
	return &Expression{
		Values: map[string]*ValueNode{"0": root},
		Result: "0",
	}
}

// ValueNode is a single node in an expression graph: either a constant
// or the invocation of a named server-side algorithm.
type ValueNode struct {
	ConstantValue           any                 `json:"constantValue,omitempty"`
	FunctionInvocationValue *FunctionInvocation `json:"functionInvocationValue,omitempty"`
}

// FunctionInvocation names a server-side algorithm and its arguments.
type FunctionInvocation struct {
	FunctionName string                `json:"functionName"`
	Arguments    map[string]*ValueNode `json:"arguments"`
}

// Constant returns a constant-valued node.
func Constant(v any) *ValueNode {
	return &ValueNode{ConstantValue: v}
}

// Invoke returns a function-invocation node.
func Invoke(name string, args map[string]*ValueNode) *ValueNode {
	return &ValueNode{
		FunctionInvocationValue: &FunctionInvocation{
			FunctionName: name,
			Arguments:    args,
		},
	}
}

// The helpers below cover the handful of algorithms the dashboard
// composes. Argument names follow the public algorithm signatures.

// ImageCollection loads an image collection by asset id.
func ImageCollection(id string) *ValueNode {
	return Invoke("ImageCollection.load", map[string]*ValueNode{
		"id": Constant(id),
	})
}

// FeatureCollection loads a feature collection table by asset id.
func FeatureCollection(id string) *ValueNode {
	return Invoke("Collection.loadTable", map[string]*ValueNode{
		"tableId": Constant(id),
	})
}

// FilterEquals filters a collection on attribute equality.
func FilterEquals(collection *ValueNode, property string, value any) *ValueNode {
	return Invoke("Collection.filter", map[string]*ValueNode{
		"collection": collection,
		"filter": Invoke("Filter.equals", map[string]*ValueNode{
			"leftField":  Constant(property),
			"rightValue": Constant(value),
		}),
	})
}

// FilterDate restricts a collection to images acquired in [start, end).
// Dates are YYYY-MM-DD strings.
func FilterDate(collection, start, end *ValueNode) *ValueNode {
	return Invoke("Collection.filter", map[string]*ValueNode{
		"collection": collection,
		"filter": Invoke("Filter.date", map[string]*ValueNode{
			"start": start,
			"end":   end,
		}),
	})
}

// Mean reduces an image collection to its per-pixel temporal mean.
// An empty collection yields a fully-masked image, not an error.
func Mean(collection *ValueNode) *ValueNode {
	return Invoke("reduce.mean", map[string]*ValueNode{
		"collection": collection,
	})
}

// SelectBand restricts an image to a single named band.
func SelectBand(image *ValueNode, band string) *ValueNode {
	return Invoke("Image.select", map[string]*ValueNode{
		"input":         image,
		"bandSelectors": Constant([]string{band}),
	})
}

// ClipToCollection clips an image to the footprint of a feature collection.
func ClipToCollection(image, collection *ValueNode) *ValueNode {
	return Invoke("Image.clipToCollection", map[string]*ValueNode{
		"image":      image,
		"collection": collection,
	})
}

// Point constructs a point geometry. Coordinates are [lon, lat] on the
// wire regardless of how callers carry them.
func Point(lat, lon float64) *ValueNode {
	return Invoke("GeometryConstructors.Point", map[string]*ValueNode{
		"coordinates": Constant([]float64{lon, lat}),
	})
}

// ReduceRegionMean computes the spatial mean of an image's pixels over a
// geometry at the given scale, with a cap on pixels considered.
func ReduceRegionMean(image, geometry *ValueNode, scaleMeters float64, maxPixels int64) *ValueNode {
	return Invoke("Image.reduceRegion", map[string]*ValueNode{
		"image":     image,
		"reducer":   Invoke("Reducer.mean", map[string]*ValueNode{}),
		"geometry":  geometry,
		"scale":     Constant(scaleMeters),
		"maxPixels": Constant(maxPixels),
	})
}

// PaintOutline draws a feature collection's outlines as an image layer.
func PaintOutline(collection *ValueNode, color string) *ValueNode {
	return Invoke("Collection.draw", map[string]*ValueNode{
		"collection": collection,
		"color":      Constant(color),
	})
}
