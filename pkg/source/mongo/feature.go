package mongo

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/genetrack/pkg/genome"
)

type exonDoc struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

type featureDoc struct {
	Track  string    `bson:"track"`
	Name   string    `bson:"name"`
	Chrom  string    `bson:"chrom,omitempty"`
	Start  int64     `bson:"start"`
	End    int64     `bson:"end"`
	Strand string    `bson:"strand,omitempty"`
	Kind   string    `bson:"kind,omitempty"`
	Class  string    `bson:"class,omitempty"`
	Exons  []exonDoc `bson:"exons,omitempty"`
	Meta   bson.M    `bson:"meta,omitempty"`
}

func newFeatureDoc(track string, f genome.Feature) featureDoc {
	d := featureDoc{
		Track:  track,
		Name:   f.Name,
		Chrom:  f.Chrom,
		Start:  f.Start,
		End:    f.End,
		Strand: string(f.Strand),
		Kind:   string(f.Kind),
		Class:  string(f.Class),
	}
	if len(f.Exons) > 0 {
		d.Exons = make([]exonDoc, len(f.Exons))
		for i, e := range f.Exons {
			d.Exons[i] = exonDoc{Start: e.Start, End: e.End}
		}
	}
	if len(f.Meta) > 0 {
		d.Meta = bson.M(f.Meta)
	}
	return d
}

func (d featureDoc) feature() genome.Feature {
	f := genome.Feature{
		Name:   d.Name,
		Chrom:  d.Chrom,
		Start:  d.Start,
		End:    d.End,
		Strand: genome.Strand(d.Strand),
		Kind:   genome.Kind(d.Kind),
		Class:  genome.SegmentClass(d.Class),
	}
	if len(d.Exons) > 0 {
		f.Exons = make([]genome.Exon, len(d.Exons))
		for i, e := range d.Exons {
			f.Exons[i] = genome.Exon{Start: e.Start, End: e.End}
		}
	}
	if len(d.Meta) > 0 {
		f.Meta = map[string]any(d.Meta)
	}
	return f
}
