package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kpaschen/quickmp/lib/settings"
	"github.com/kpaschen/quickmp/quickmp"
)

func readSeries(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data := make([]float64, 0)
	reader := bufio.NewReader(file)
	lineCount := 0
	for {
		line, err := reader.ReadString('\n')
		if len(line) == 0 {
			break
		}
		line = strings.TrimSpace(line)
		lineCount++
		if line != "" {
			v, perr := strconv.ParseFloat(line, 64)
			if perr != nil {
				return nil, fmt.Errorf("on line %d of %s, failed to parse %q into a float: %v",
					lineCount, filename, line, perr)
			}
			data = append(data, v)
		}
		if err != nil {
			break // err is usually io.EOF
		}
	}
	return data, nil
}

func writeProfile(filename string, P []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()
	for i, v := range P {
		if err := w.Write([]string{strconv.Itoa(i), strconv.FormatFloat(v, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	filename := flag.String("filename", "", "Name of the file holding the primary time series, one value per line")
	secondFilename := flag.String("secondFilename", "", "Name of a second time series file; if set, computes an ab-join against filename instead of a self-join")
	windowSize := flag.Int("windowSize", 100, "subsequence window length m")
	normalize := flag.Bool("normalize", true, "whether to compute the z-normalized (Euclidean) matrix profile")
	output := flag.String("output", "", "optional file to write the resulting profile to, as CSV of index,distance")
	flag.Parse()

	if *filename == "" {
		fmt.Fprintln(os.Stderr, "-filename is required")
		os.Exit(1)
	}

	T1, err := readSeries(*filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", *filename, err)
		os.Exit(1)
	}

	if err := quickmp.Initialize(0, 1); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize quickmp: %v\n", err)
		os.Exit(1)
	}
	defer quickmp.Finalize()

	s := settings.QuickmpSettings{WindowSize: *windowSize, Normalize: *normalize}.ComputeDerivedFields()

	var result *quickmp.Result
	if *secondFilename == "" {
		result, err = quickmp.SelfJoin(T1, s.WindowSize, 0, s.Normalize)
	} else {
		var T2 []float64
		T2, err = readSeries(*secondFilename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", *secondFilename, err)
			os.Exit(1)
		}
		result, err = quickmp.ABJoin(T1, T2, s.WindowSize, 0, s.Normalize)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to compute matrix profile: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := writeProfile(*output, result.Profile); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", *output, err)
			os.Exit(1)
		}
		fmt.Printf("wrote matrix profile of length %d to %s\n", len(result.Profile), *output)
		return
	}

	for i, v := range result.Profile {
		fmt.Printf("%d\t%g\n", i, v)
	}
}
