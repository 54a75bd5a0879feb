// Package catalog models the persistent append-only observation tables: one
// row per scene, one column per catchment in fixed order, stored as
// delimited text with a name_id,date,<catchment...> header. Each variable
// owns a pair of these tables (values and valid fractions) that the merge
// package keeps in lockstep.
package catalog
