// Command basintab maintains per-catchment zonal statistics tables from
// directories of satellite raster products. It discovers scenes, invokes an
// external areal-statistics engine for the ones not yet extracted, and
// appends the results to paired value and valid-fraction CSV tables.
package main
