package geo

import "math"

// earthRadiusKm is the equatorial radius used for the spherical
// meter-to-degree approximation.
const earthRadiusKm = 6378.0

// Point is a latitude/longitude sampling coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// AddToLatitude returns the latitude reached by moving meters north
// (negative meters move south).
func AddToLatitude(lat float64, meters float64) float64 {
	km := meters / 1000
	return lat + (km/earthRadiusKm)*(180/math.Pi)
}

// AddToLongitude returns the longitude reached by moving meters east of
// (lon, lat). The latitude sets the cosine correction: a degree of
// longitude shrinks towards the poles.
func AddToLongitude(lon, lat float64, meters float64) float64 {
	km := meters / 1000
	return lon + (km/earthRadiusKm)*(180/math.Pi)/math.Cos(lat*math.Pi/180)
}

// Grid describes a rectangular lattice of query points centered on a
// start location. StepM is the spacing between adjacent points in meters;
// the half extents bound the lattice in each direction from the center.
type Grid struct {
	Center      Point
	HalfWidthM  float64
	HalfHeightM float64
	StepM       float64
}

// steps returns how many lattice positions cover an extent of 2*half
// meters at the given spacing, never fewer than one.
func steps(half, step float64) int {
	if half <= 0 || step <= 0 {
		return 1
	}
	n := int(math.Ceil(2 * half / step))
	if n < 1 {
		return 1
	}
	return n
}

// Points generates the lattice, rows south to north and columns west to
// east. Offsets are symmetric around the center, so every point stays
// within the half extents and extents smaller than one step collapse to
// the center point alone. Longitude offsets use the center latitude for
// the cosine term.
func (g Grid) Points() []Point {
	nRows := steps(g.HalfHeightM, g.StepM)
	nCols := steps(g.HalfWidthM, g.StepM)

	pts := make([]Point, 0, nRows*nCols)
	for i := 0; i < nRows; i++ {
		dy := (float64(i) - float64(nRows-1)/2) * g.StepM
		lat := AddToLatitude(g.Center.Lat, dy)
		for j := 0; j < nCols; j++ {
			dx := (float64(j) - float64(nCols-1)/2) * g.StepM
			pts = append(pts, Point{
				Lat: lat,
				Lon: AddToLongitude(g.Center.Lon, g.Center.Lat, dx),
			})
		}
	}
	return pts
}
